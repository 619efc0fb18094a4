package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/compute"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

func accelerations(g *physics.Gravity, b *dynamo.Bodies) []r3.Vec {
	acc := make([]r3.Vec, b.Len())
	Expect(g.Accelerations(b.Mass, b.Pos, acc)).To(Succeed())
	return acc
}

var _ = Describe("Units", func() {
	It("derives G close to 4π² in solar units", func() {
		u, err := physics.LookupUnits("solar")
		Expect(err).NotTo(HaveOccurred())
		Expect(u.G()).To(BeNumerically("~", 4*math.Pi*math.Pi, 1e-3*4*math.Pi*math.Pi))
	})

	It("derives velocity from length and time", func() {
		u := physics.Units{Mass: 1, Length: physics.AU, Time: physics.Year}
		Expect(u.Velocity()).To(BeNumerically("~", physics.AU/physics.Year, 1e-9))
	})

	It("honours an explicit G", func() {
		u, err := physics.LookupUnits("nbody")
		Expect(err).NotTo(HaveOccurred())
		Expect(u.G()).To(Equal(1.0))
	})

	It("rejects unknown systems", func() {
		_, err := physics.LookupUnits("furlongs")
		Expect(err).To(HaveOccurred())
		Expect(physics.UnitSystems()).To(ContainElements("nbody", "solar", "cgs"))
	})
})

var _ = Describe("Binary", func() {
	var (
		b    *dynamo.Bodies
		grav *physics.Gravity
	)

	BeforeEach(func() {
		var err error
		b, err = physics.Binary(1, 1, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		grav = physics.NewGravity(1, 0, compute.NewCPUBackend(1))
	})

	It("matches the reference scenario layout", func() {
		Expect(b.Pos[0]).To(Equal(r3.Vec{X: -0.5}))
		Expect(b.Pos[1]).To(Equal(r3.Vec{X: 0.5}))
		Expect(b.Vel[1].Y).To(BeNumerically("~", math.Sqrt(0.5), 1e-12))
	})

	It("is a circular orbit", func() {
		acc := accelerations(grav, b)
		for i := range acc {
			r := r3.Norm(b.Pos[i])
			v := r3.Norm(b.Vel[i])
			Expect(r3.Norm(acc[i])).To(BeNumerically("~", v*v/r, 1e-12))
			Expect(r3.Dot(acc[i], b.Pos[i])).To(BeNumerically("<", 0))
		}
	})

	It("has zero momentum and the textbook energy", func() {
		Expect(r3.Norm(physics.Momentum(b))).To(BeNumerically("<", 1e-15))
		Expect(grav.Energy(b)).To(BeNumerically("~", -0.5, 1e-12))
		Expect(physics.AngularMomentum(b).Z).To(BeNumerically("~", math.Sqrt(0.5), 1e-12))
		Expect(physics.VirialRatio(b, 1, 0)).To(BeNumerically("~", 1, 1e-12))
	})

	It("keeps the barycentre at the origin for unequal masses", func() {
		b, err := physics.Binary(3, 1, 2, 1)
		Expect(err).NotTo(HaveOccurred())
		pos, vel := physics.CenterOfMass(b)
		Expect(r3.Norm(pos)).To(BeNumerically("<", 1e-15))
		Expect(r3.Norm(vel)).To(BeNumerically("<", 1e-15))
		Expect(physics.BinaryPeriod(3, 1, 2, 1)).To(BeNumerically("~", 2*math.Pi*math.Sqrt(2), 1e-12))
	})

	It("rejects bad parameters", func() {
		_, err := physics.Binary(0, 1, 1, 1)
		Expect(err).To(MatchError(dynamo.ErrNonPositiveMass))
		_, err = physics.Binary(1, 1, 0, 1)
		Expect(err).To(MatchError(ContainSubstring("separation")))
	})
})

var _ = Describe("FigureEight", func() {
	It("starts with zero momentum about the origin", func() {
		b := physics.FigureEight()
		Expect(b.Validate()).To(Succeed())
		Expect(r3.Norm(physics.Momentum(b))).To(BeNumerically("<", 1e-8))
		pos, _ := physics.CenterOfMass(b)
		Expect(r3.Norm(pos)).To(BeNumerically("<", 1e-12))
	})
})

var _ = Describe("Ring", func() {
	It("pulls every member straight inwards with the predicted magnitude", func() {
		b, err := physics.Ring(6, 0.01, 2, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Len()).To(Equal(7))

		acc := accelerations(physics.NewGravity(1, 0, compute.NewCPUBackend(1)), b)
		want := physics.RingAcceleration(6, 0.01, 2, 1, 1)
		for i := 1; i < b.Len(); i++ {
			Expect(r3.Norm(acc[i])).To(BeNumerically("~", want, 1e-12))
			cos := -r3.Dot(acc[i], b.Pos[i]) / (r3.Norm(acc[i]) * r3.Norm(b.Pos[i]))
			Expect(cos).To(BeNumerically("~", 1, 1e-12))
		}
		Expect(r3.Norm(acc[0])).To(BeNumerically("<", 1e-15))
	})

	It("works without a central mass", func() {
		b, err := physics.Ring(3, 1, 1, 0, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Len()).To(Equal(3))
		Expect(r3.Norm(physics.Momentum(b))).To(BeNumerically("<", 1e-12))
	})
})

var _ = Describe("RandomSphere", func() {
	It("is reproducible and virialised", func() {
		a, err := physics.RandomSphere(50, 1, 1, 42)
		Expect(err).NotTo(HaveOccurred())
		b, err := physics.RandomSphere(50, 1, 1, 42)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Pos).To(Equal(b.Pos))
		Expect(physics.TotalMass(a)).To(BeNumerically("~", 1, 1e-12))
		Expect(r3.Norm(physics.Momentum(a))).To(BeNumerically("<", 1e-12))
		Expect(physics.VirialRatio(a, 1, 0)).To(BeNumerically("~", 1, 1e-9))
		for _, p := range a.Pos {
			Expect(r3.Norm(p)).To(BeNumerically("<", 2.5))
		}
	})

	It("needs two bodies", func() {
		_, err := physics.RandomSphere(1, 1, 1, 0)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})

var _ = Describe("SolarSystem", func() {
	It("places the earth about 1 AU out at about 2π AU/yr", func() {
		u, err := physics.LookupUnits("solar")
		Expect(err).NotTo(HaveOccurred())

		b := physics.SolarSystem(u)
		Expect(b.Len()).To(Equal(len(physics.SolarSystemNames)))
		Expect(b.Validate()).To(Succeed())

		earth := 3
		Expect(physics.SolarSystemNames[earth]).To(Equal("earth"))
		Expect(r3.Norm(b.Pos[earth])).To(BeNumerically("~", 1, 0.02))
		Expect(r3.Norm(b.Vel[earth])).To(BeNumerically("~", 2*math.Pi, 0.4))
		Expect(b.Mass[0]).To(BeNumerically("~", 1, 0.01))
	})
})

var _ = Describe("ToCenterOfMassFrame", func() {
	It("moves the barycentre to rest at the origin", func() {
		b := physics.FigureEight()
		for i := range b.Pos {
			b.Pos[i] = r3.Add(b.Pos[i], r3.Vec{X: 3, Y: -2, Z: 1})
			b.Vel[i] = r3.Add(b.Vel[i], r3.Vec{Z: 0.5})
		}
		physics.ToCenterOfMassFrame(b)
		pos, vel := physics.CenterOfMass(b)
		Expect(r3.Norm(pos)).To(BeNumerically("<", 1e-12))
		Expect(r3.Norm(vel)).To(BeNumerically("<", 1e-12))
	})
})
