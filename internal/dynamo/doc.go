// Package dynamo provides core primitives for gravitational N-body runs.
//
// The package defines the fundamental types shared by the force kernel,
// the integrators and the time-loop driver:
//
//   - [Bodies]: parallel mass/position/velocity arrays of one system
//   - [Snapshot]: one sampled instant, flattened for output
//   - [ForceField]: acceleration evaluation (dv/dt = a(x))
//   - [Integrator]: advances a body set by one step of size dt
//   - [Config]: horizon, step-size constant and output cadence of a run
//   - [Result]: snapshots and diagnostics produced by a finished run
//
// # Example
//
//	grav := physics.NewGravity(1.0, 0, nil)
//	s := sim.New(grav, integrators.NewLeapfrog())
//	result, _ := s.Run(ctx, bodies, cfg)
//	table := result.Table() // rows: t, positions, velocities
//
// # Ownership
//
// A [Bodies] value handed to a driver is cloned; the driver owns the
// canonical arrays for the duration of the run. Force fields and
// integrators get exclusive write access only during their own calls.
package dynamo
