// Package physics provides Newtonian gravity and the body sets it acts on.
//
// [Gravity] implements [dynamo.ForceField] on top of a [compute.Backend]
// and [dynamo.Hamiltonian] for energy monitoring. Diagnostics such as
// [AngularMomentum] and [CenterOfMass] work on any [dynamo.Bodies].
//
// Initial conditions:
//
//   - [SolarSystem]: sun, planets and pluto from a barycentric ephemeris
//   - [Binary]: circular two-body orbit
//   - [FigureEight]: periodic three-body choreography
//   - [Ring]: rigidly rotating ring, optionally around a central mass
//   - [RandomSphere]: virialised uniform sphere
//
// # Units
//
// [Units] converts the CGS ephemeris into any mass/length/time system and
// derives G for it:
//
//	u, _ := physics.LookupUnits("solar") // M_sun, AU, yr
//	grav := physics.NewGravity(u.G(), 0, nil)
//	bodies := physics.SolarSystem(u)
package physics
