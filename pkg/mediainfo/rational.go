package mediainfo

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRatioTerm bounds numerator and denominator of reduced aspect ratios
const MaxRatioTerm int64 = 1024 * 1024

type Rational struct {
	Num int64
	Den int64
}

func (r Rational) Valid() bool { return r.Num != 0 && r.Den != 0 }

func (r Rational) Float() float64 {
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d:%d", r.Num, r.Den)
}

// Equal compares two rationals by value (1:2 == 2:4)
func (r Rational) Equal(o Rational) bool {
	if r.Den == 0 || o.Den == 0 {
		return r.Den == o.Den && r.Num == o.Num
	}
	return r.Num*o.Den == o.Num*r.Den
}

// ParseRational reads "num/den" or "num:den". Garbage results in an unknown (0/0) rational.
func ParseRational(s string) Rational {
	sep := strings.IndexAny(s, "/:")
	if sep < 0 {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Rational{}
		}
		return Rational{Num: n, Den: 1}
	}
	num, err := strconv.ParseInt(strings.TrimSpace(s[:sep]), 10, 64)
	if err != nil {
		return Rational{}
	}
	den, err := strconv.ParseInt(strings.TrimSpace(s[sep+1:]), 10, 64)
	if err != nil {
		return Rational{}
	}
	return Rational{Num: num, Den: den}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Reduce finds the closest fraction to num/den whose terms do not exceed max.
// exact is false if the result is an approximation or den is 0.
func Reduce(num, den, max int64) (result Rational, exact bool) {
	if den == 0 {
		return Rational{}, false
	}
	a0 := Rational{Num: 0, Den: 1}
	a1 := Rational{Num: 1, Den: 0}
	negative := (num < 0) != (den < 0)

	num, den = abs64(num), abs64(den)
	if g := gcd(num, den); g != 0 {
		num /= g
		den /= g
	}
	if num <= max && den <= max {
		a1 = Rational{Num: num, Den: den}
		den = 0
	}

	for den != 0 {
		x := num / den
		nextDen := num - den*x
		a2n := x*a1.Num + a0.Num
		a2d := x*a1.Den + a0.Den

		if a2n > max || a2d > max {
			// semi-convergent
			if a1.Num != 0 {
				x = (max - a0.Num) / a1.Num
			}
			if a1.Den != 0 {
				if y := (max - a0.Den) / a1.Den; y < x {
					x = y
				}
			}
			if den*(2*x*a1.Den+a0.Den) > num*a1.Den {
				a1 = Rational{Num: x*a1.Num + a0.Num, Den: x*a1.Den + a0.Den}
			}
			break
		}

		a0 = a1
		a1 = Rational{Num: a2n, Den: a2d}
		num = den
		den = nextDen
	}

	if negative {
		a1.Num = -a1.Num
	}
	return a1, den == 0
}
