package services

import "math"

// correlationPValue approximates the two-tailed p-value of a Pearson
// coefficient r over n samples via the t statistic t = r*sqrt(n-2)/sqrt(1-r²).
func correlationPValue(r float64, n int) float64 {
	if n < 3 {
		return 1.0
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)) / math.Sqrt(1-r*r)
	p := 2 * (1 - studentTCDF(math.Abs(t), float64(n-2)))
	return clamp(p, 0, 1)
}

// studentTCDF evaluates the CDF of Student's t at x with df degrees of
// freedom, through the regularized incomplete beta relation:
// for t>0, CDF = 1 - 0.5*I_{v/(v+t²)}(v/2, 1/2).
func studentTCDF(x, df float64) float64 {
	if x == 0 {
		return 0.5
	}
	z := df / (df + x*x)
	ib := regularizedIncompleteBeta(0.5*df, 0.5, z)
	if x > 0 {
		return 1 - 0.5*ib
	}
	return 0.5 * ib
}

// regularizedIncompleteBeta returns I_x(a,b) using a continued fraction
// (Lentz's algorithm), switching arguments by symmetry for convergence.
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lg := func(v float64) float64 {
		l, _ := math.Lgamma(v)
		return l
	}
	bt := math.Exp(lg(a+b) - lg(a) - lg(b) + a*math.Log(x) + b*math.Log(1-x))
	if x < (a+1)/(a+b+2) {
		return bt * betaContinuedFraction(a, b, x) / a
	}
	return 1 - bt*betaContinuedFraction(b, a, 1-x)/b
}

func betaContinuedFraction(a, b, x float64) float64 {
	const maxIter = 200
	const eps = 3e-7
	const fpmin = 1e-30

	am, bm, az := 1.0, 1.0, 1.0
	qab := a + b
	qap := a + 1
	qam := a - 1
	bz := 1 - qab*x/qap

	for m := 1; m <= maxIter; m++ {
		em := float64(m)
		tem := em + em
		d := em * (b - em) * x / ((qam + tem) * (a + tem))
		ap := az + d*am
		bp := bz + d*bm
		d = -(a + em) * (qab + em) * x / ((a + tem) * (qap + tem))
		app := ap + d*az
		bpp := bp + d*bz
		if math.Abs(bpp) < fpmin {
			bpp = fpmin
		}
		am = ap / bpp
		bm = bp / bpp
		aold := az
		az = app / bpp
		bz = 1.0
		if math.Abs(az-aold) < eps*math.Abs(az) {
			return az
		}
	}
	return az
}
