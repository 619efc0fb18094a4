package physics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// SolarSystemNames lists the bodies of SolarSystem in index order.
var SolarSystemNames = []string{
	"sun", "mercury", "venus", "earth", "mars",
	"jupiter", "saturn", "uranus", "neptune", "pluto",
}

// Masses in g, barycentric ephemeris positions in km and velocities in km/s.
var (
	solarMass = []float64{
		1.988544e33,
		3.302e26,
		4.8685e27,
		5.97219e27,
		6.4185e26,
		1.89813e30,
		5.68319e29,
		8.68103e28,
		1.0241e27,
		1.307e25,
	}
	solarPosKm = []r3.Vec{
		{X: 4.685928291891263e+05, Y: 9.563194923290641e+05, Z: -1.533341587127076e+04},
		{X: -4.713579828527527e+07, Y: -4.631957178347297e+07, Z: 5.106488259447999e+05},
		{X: 1.087015383199374e+08, Y: -7.281577953082427e+06, Z: -6.381857167679189e+06},
		{X: -4.666572753335893e+07, Y: 1.403043145802726e+08, Z: 1.493509552154690e+04},
		{X: 7.993300729834399e+07, Y: -1.951269688004358e+08, Z: -6.086301544224218e+06},
		{X: -4.442444431519640e+08, Y: -6.703061523285834e+08, Z: 1.269185734527490e+07},
		{X: -4.890566777017240e+07, Y: -1.503979857988314e+09, Z: 2.843053033246052e+07},
		{X: -9.649665981767261e+08, Y: -2.671478218630915e+09, Z: 2.586047227024674e+06},
		{X: 2.238011384258528e+08, Y: 4.462979506400823e+09, Z: -9.704945189848828e+07},
		{X: 1.538634961725572e+09, Y: 6.754880920368265e+09, Z: -1.168322135333601e+09},
	}
	solarVelKms = []r3.Vec{
		{X: -1.278455768585727e-02, Y: 6.447692564652730e-03, Z: 3.039394044840682e-04},
		{X: 2.440414864241152e+01, Y: -3.230927714856684e+01, Z: -4.882735649260043e+00},
		{X: 2.484508425171419e+00, Y: 3.476687455583895e+01, Z: 3.213482419270903e-01},
		{X: -2.871599709379560e+01, Y: -9.658668417740959e+00, Z: -2.049066619477902e-03},
		{X: 2.337340830878404e+01, Y: 1.117498287104724e+01, Z: -3.459891064580085e-01},
		{X: 1.073596630262369e+01, Y: -6.599122996686262e+00, Z: -2.139417332332738e-01},
		{X: 9.121308225757311e+00, Y: -3.524504589006163e-01, Z: -3.554364061038437e-01},
		{X: 6.352626804478141e+00, Y: -2.630553214528946e+00, Z: -9.234330561966453e-02},
		{X: -5.460590042066011e+00, Y: 3.078261976854122e-01, Z: 1.198212503409012e-01},
		{X: -3.748709222608039e+00, Y: 3.840130094300949e-01, Z: 1.063222714737127e+00},
	}
)

// SolarSystem returns the sun, the eight planets and pluto in units u.
func SolarSystem(u Units) *dynamo.Bodies {
	n := len(solarMass)
	b := dynamo.NewBodies(n)
	lengthScale := Kilometer / u.Length
	velocityScale := Kilometer / u.Velocity()

	for i := 0; i < n; i++ {
		b.Mass[i] = solarMass[i] / u.Mass
		b.Pos[i] = r3.Scale(lengthScale, solarPosKm[i])
		b.Vel[i] = r3.Scale(velocityScale, solarVelKms[i])
	}
	return b
}
