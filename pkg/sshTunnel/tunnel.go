package sshtunnel

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/goph/emperror"
	"github.com/op/go-logging"
	"go.uber.org/multierr"
	"golang.org/x/crypto/ssh"
)

type Endpoint struct {
	Host string
	Port int
}

// ParseEndpoint reads "host:port"
func ParseEndpoint(addr string) (*Endpoint, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, emperror.Wrapf(err, "invalid endpoint %s", addr)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, emperror.Wrapf(err, "invalid port in %s", addr)
	}
	return &Endpoint{Host: host, Port: p}, nil
}

func (endpoint *Endpoint) String() string {
	return net.JoinHostPort(endpoint.Host, strconv.Itoa(endpoint.Port))
}

type SourceDestination struct {
	Local  *Endpoint
	Remote *Endpoint
}

// SSHtunnel forwards local ports to hosts reachable from the ssh server,
// e.g. a postgres report database or an s3 endpoint behind a bastion host
type SSHtunnel struct {
	server   *Endpoint
	tunnels  map[string]*SourceDestination
	listener map[string]net.Listener
	config   *ssh.ClientConfig
	client   *ssh.Client
	log      *logging.Logger
	quit     chan struct{}
	wg       sync.WaitGroup
}

func NewSSHTunnel(user, privateKey string, serverEndpoint *Endpoint, tunnels map[string]*SourceDestination, log *logging.Logger) (*SSHtunnel, error) {
	key, err := os.ReadFile(privateKey)
	if err != nil {
		return nil, emperror.Wrapf(err, "Unable to read private key %s", privateKey)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, emperror.Wrapf(err, "Unable to parse private key")
	}

	sshConfig := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	tunnel := &SSHtunnel{
		config:   sshConfig,
		server:   serverEndpoint,
		tunnels:  tunnels,
		listener: make(map[string]net.Listener),
		log:      log,
		quit:     make(chan struct{}),
	}

	return tunnel, nil
}

func (tunnel *SSHtunnel) String() string {
	str := fmt.Sprintf("%v@%v",
		tunnel.config.User,
		tunnel.server.String(),
	)
	for _, srcdests := range tunnel.tunnels {
		str += fmt.Sprintf(" - (%v -> %v)",
			srcdests.Local.String(),
			srcdests.Remote.String(),
		)
	}
	return str
}

// LocalAddr is the address of the listener of tunnel key, useful with port 0
func (tunnel *SSHtunnel) LocalAddr(key string) (net.Addr, bool) {
	l, ok := tunnel.listener[key]
	if !ok {
		return nil, false
	}
	return l.Addr(), true
}

func (tunnel *SSHtunnel) Close() error {
	var err error
	close(tunnel.quit)
	for _, listener := range tunnel.listener {
		err = multierr.Append(err, listener.Close())
	}
	if tunnel.client != nil {
		err = multierr.Append(err, tunnel.client.Close())
	}
	tunnel.wg.Wait()
	return err
}

func (tunnel *SSHtunnel) Start() error {
	var err error
	tunnel.log.Infof("dialing ssh: %v", tunnel.String())
	tunnel.client, err = ssh.Dial("tcp", tunnel.server.String(), tunnel.config)
	if err != nil {
		return emperror.Wrapf(err, "server dial error to %v", tunnel.server.String())
	}

	for key, t := range tunnel.tunnels {
		listener, err := net.Listen("tcp", t.Local.String())
		if err != nil {
			return emperror.Wrapf(err, "cannot start listener on %v", t.Local.String())
		}
		tunnel.listener[key] = listener
		tunnel.wg.Add(1)
		go tunnel.accept(listener, t.Remote)
	}
	return nil
}

func (tunnel *SSHtunnel) accept(listener net.Listener, remote *Endpoint) {
	defer tunnel.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-tunnel.quit:
			default:
				tunnel.log.Errorf("error accepting connection on %v: %v", listener.Addr(), err)
			}
			return
		}
		tunnel.wg.Add(1)
		go func() {
			defer tunnel.wg.Done()
			tunnel.forward(conn, remote)
		}()
	}
}

func (tunnel *SSHtunnel) forward(localConn net.Conn, endpoint *Endpoint) {
	remoteConn, err := tunnel.client.Dial("tcp", endpoint.String())
	if err != nil {
		tunnel.log.Errorf("Remote dial error %v: %v", endpoint.String(), err)
		localConn.Close()
		return
	}

	copyConn := func(writer, reader net.Conn) {
		defer writer.Close()
		defer reader.Close()

		if _, err := io.Copy(writer, reader); err != nil {
			tunnel.log.Debugf("io.Copy %v: %v", endpoint.String(), err)
		}
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		copyConn(localConn, remoteConn)
		wg.Done()
	}()
	go func() {
		copyConn(remoteConn, localConn)
		wg.Done()
	}()
	wg.Wait()
}
