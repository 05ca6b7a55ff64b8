package prayertime

import "math"

// Solar coordinates and time-of-angle helpers. Angles are in degrees and
// times in hours of local mean time unless noted otherwise.

func dsin(d float64) float64 { return math.Sin(d * math.Pi / 180) }
func dcos(d float64) float64 { return math.Cos(d * math.Pi / 180) }
func dtan(d float64) float64 { return math.Tan(d * math.Pi / 180) }

func darcsin(x float64) float64 { return math.Asin(clamp(x)) * 180 / math.Pi }
func darccos(x float64) float64 { return math.Acos(clamp(x)) * 180 / math.Pi }
func darctan2(y, x float64) float64 {
	return math.Atan2(y, x) * 180 / math.Pi
}
func darccot(x float64) float64 { return math.Atan(1/x) * 180 / math.Pi }

// clamp keeps inverse trig total; outside [-1,1] the sun never reaches the
// requested angle and the nearest reachable one is used instead.
func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

func fixAngle(a float64) float64 { return fix(a, 360) }
func fixHour(h float64) float64  { return fix(h, 24) }

func fix(a, b float64) float64 {
	a = a - b*math.Floor(a/b)
	if a < 0 {
		return a + b
	}
	return a
}

// julianDay returns the Julian day at 0h UT of the given Gregorian date.
func julianDay(year, month, day int) float64 {
	if month <= 2 {
		year--
		month += 12
	}
	a := math.Floor(float64(year) / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*float64(year+4716)) + math.Floor(30.6001*float64(month+1)) + float64(day) + b - 1524.5
}

type sunPosition struct {
	declination float64
	equation    float64 // equation of time, hours
}

func solarPosition(jd float64) sunPosition {
	d := jd - 2451545.0
	g := fixAngle(357.529 + 0.98560028*d)
	q := fixAngle(280.459 + 0.98564736*d)
	l := fixAngle(q + 1.915*dsin(g) + 0.020*dsin(2*g))
	e := 23.439 - 0.00000036*d

	ra := darctan2(dcos(e)*dsin(l), dcos(l)) / 15
	return sunPosition{
		declination: darcsin(dsin(e) * dsin(l)),
		equation:    q/15 - fixHour(ra),
	}
}

// solarDay evaluates sun events for one civil date at one latitude. jd is
// the Julian day at local mean midnight.
type solarDay struct {
	jd       float64
	latitude float64
}

func (s solarDay) midDay(t float64) float64 {
	eqt := solarPosition(s.jd + t/24).equation
	return fixHour(12 - eqt)
}

// sunAngleTime is when the sun is angle degrees below the horizon, before
// noon when ccw is set and after it otherwise.
func (s solarDay) sunAngleTime(angle, t float64, ccw bool) float64 {
	decl := solarPosition(s.jd + t/24).declination
	noon := s.midDay(t)
	h := darccos((-dsin(angle)-dsin(decl)*dsin(s.latitude))/(dcos(decl)*dcos(s.latitude))) / 15
	if ccw {
		return noon - h
	}
	return noon + h
}

// asrTime is when an object's shadow is factor times its length plus the
// noon shadow.
func (s solarDay) asrTime(factor, t float64) float64 {
	decl := solarPosition(s.jd + t/24).declination
	angle := -darccot(factor + dtan(math.Abs(s.latitude-decl)))
	return s.sunAngleTime(angle, t, false)
}
