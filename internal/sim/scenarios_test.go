package sim_test

import (
	"context"
	"flag"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"gonum.org/v1/gonum/spatial/r3"
)

var update = flag.Bool("update", false, "rewrite golden files")

type clock struct {
	times []float64
	dts   []float64
}

func (c *clock) OnStep(step int, t, dt float64, b *dynamo.Bodies) {
	c.times = append(c.times, t)
	c.dts = append(c.dts, dt)
}

var _ = Describe("circular binary", func() {
	const g = 1.0
	var (
		bodies *dynamo.Bodies
		period float64
		omega  float64
		cfg    dynamo.Config
		ticks  *clock
		result *dynamo.Result
	)

	BeforeEach(func() {
		var err error
		bodies, err = physics.Binary(1, 1, 1, g)
		Expect(err).NotTo(HaveOccurred())
		Expect(bodies.Pos[0]).To(Equal(r3.Vec{X: -0.5}))
		Expect(bodies.Pos[1]).To(Equal(r3.Vec{X: 0.5}))

		period = physics.BinaryPeriod(1, 1, 1, g)
		omega = 2 * math.Pi / period
		cfg = dynamo.Config{
			TMax:          10 * period,
			MinDt:         0.01,
			DtOutput:      0.1 * period,
			ValidateState: true,
		}

		ticks = &clock{}
		s := sim.New(physics.NewGravity(g, 0, nil), integrators.NewLeapfrog())
		s.AddObserver(ticks)
		result, err = s.Run(context.Background(), bodies, cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("follows the analytic orbit at every sample", func() {
		for _, snap := range result.Snapshots {
			want := r3.Vec{X: 0.5 * math.Cos(omega*snap.Time), Y: 0.5 * math.Sin(omega*snap.Time)}
			Expect(r3.Norm(r3.Sub(snap.Position(1), want))).To(BeNumerically("<", 1e-2),
				"t=%g", snap.Time)
			Expect(r3.Norm(r3.Add(snap.Position(0), snap.Position(1)))).To(BeNumerically("<", 1e-9))
		}
	})

	It("closes on itself after each period", func() {
		start := bodies.Pos[1]
		closed := 0
		for _, snap := range result.Snapshots {
			turns := snap.Time / period
			if math.Abs(turns-math.Round(turns)) > 2.5e-3 {
				continue
			}
			Expect(r3.Norm(r3.Sub(snap.Position(1), start))).To(BeNumerically("<", 1e-2), "t=%g", snap.Time)
			closed++
		}
		Expect(closed).To(BeNumerically(">=", 5))
	})

	It("conserves energy and angular momentum within one percent", func() {
		e0 := physics.TotalEnergy(bodies, g, 0)
		l0 := physics.AngularMomentum(bodies)
		for _, snap := range result.Snapshots {
			b := snap.Bodies(bodies.Mass)
			Expect(math.Abs(physics.TotalEnergy(b, g, 0)-e0) / math.Abs(e0)).To(BeNumerically("<", 0.01))
			Expect(r3.Norm(r3.Sub(physics.AngularMomentum(b), l0)) / r3.Norm(l0)).To(BeNumerically("<", 0.01))
		}
		Expect(result.EnergyDrift).To(BeNumerically("<", 0.01))
	})

	It("keeps total momentum at zero", func() {
		Expect(r3.Norm(physics.Momentum(result.Final))).To(BeNumerically("<", 1e-12))
	})

	It("advances a strictly monotonic clock up to the horizon", func() {
		Expect(ticks.times).To(HaveLen(result.StepsTaken))
		prev := 0.0
		for i, t := range ticks.times {
			Expect(ticks.dts[i]).To(BeNumerically(">", 0))
			Expect(t).To(BeNumerically(">", prev))
			prev = t
		}
		Expect(result.FinalTime).To(BeNumerically(">=", cfg.TMax))
		Expect(result.FinalTime - ticks.dts[len(ticks.dts)-1]).To(BeNumerically("<", cfg.TMax))
	})

	It("samples once per output interval", func() {
		threshold := 0.0
		for _, snap := range result.Snapshots {
			Expect(snap.Time).To(BeNumerically(">=", threshold))
			Expect(snap.Time - threshold).To(BeNumerically("<=", result.MaxDt))
			threshold += cfg.DtOutput
		}
		Expect(len(result.Snapshots)).To(BeNumerically("~", cfg.ExpectedSamples(), 1))
	})

	It("produces rows of 1+6N columns", func() {
		table := result.Table()
		rows, cols := table.Dims()
		Expect(rows).To(Equal(len(result.Snapshots)))
		Expect(cols).To(Equal(13))
		Expect(table.At(0, 0)).To(Equal(0.0))
		Expect(table.At(0, 4)).To(Equal(0.5))
	})
})

var _ = Describe("adaptive stepping", func() {
	It("shrinks the step near pericentre of an eccentric orbit", func() {
		b, err := physics.Binary(1, 1, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		b.Vel[0] = r3.Scale(0.5, b.Vel[0])
		b.Vel[1] = r3.Scale(0.5, b.Vel[1])

		ticks := &clock{}
		s := sim.New(physics.NewGravity(1, 0, nil), integrators.NewLeapfrog())
		s.AddObserver(ticks)
		result, err := s.Run(context.Background(), b, dynamo.Config{TMax: 5, MinDt: 1e-3, DtOutput: 0.1})
		Expect(err).NotTo(HaveOccurred())

		Expect(result.MaxDt / result.MinDt).To(BeNumerically(">", 10))
		Expect(result.EnergyDrift).To(BeNumerically("<", 0.01))
	})

	It("caps the step at MaxDt", func() {
		b, err := physics.Binary(1, 1, 10, 1)
		Expect(err).NotTo(HaveOccurred())

		s := sim.New(physics.NewGravity(1, 0, nil), integrators.NewLeapfrog())
		result, err := s.Run(context.Background(), b, dynamo.Config{TMax: 5, MinDt: 0.01, DtOutput: 1, MaxDt: 0.05})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.MaxDt).To(BeNumerically("<=", 0.05))
	})
})

var _ = Describe("figure-eight", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.Config{
			TMax:          physics.FigureEightPeriod,
			MinDt:         1e-3,
			DtOutput:      0.5,
			ValidateState: true,
		}
	})

	run := func() *dynamo.Result {
		s := sim.New(physics.NewGravity(1, 0, nil), integrators.NewLeapfrog())
		result, err := s.Run(context.Background(), physics.FigureEight(), cfg)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("returns to its initial configuration after one period", func() {
		start := physics.FigureEight()
		result := run()
		for i := range start.Pos {
			Expect(r3.Norm(r3.Sub(result.Final.Pos[i], start.Pos[i]))).To(BeNumerically("<", 1e-2))
			Expect(r3.Norm(r3.Sub(result.Final.Vel[i], start.Vel[i]))).To(BeNumerically("<", 1e-2))
		}
		Expect(result.EnergyDrift).To(BeNumerically("<", 1e-4))
	})

	It("matches the golden trajectory", func() {
		result := run()
		path := filepath.Join("testdata", "figure8.golden")

		if *update {
			f, err := os.Create(path)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()
			Expect(storage.WriteCSV(f, result.Snapshots)).To(Succeed())
			return
		}

		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		golden, err := storage.ReadCSV(f)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Snapshots).To(HaveLen(len(golden)))
		for i, want := range golden {
			got := result.Snapshots[i].Row()
			for j, v := range want.Row() {
				Expect(got[j]).To(BeNumerically("~", v, 1e-8), "sample %d column %d", i, j)
			}
		}
	})
})

var _ = Describe("third law over a run", func() {
	It("keeps the centre of mass fixed for a random cluster", func() {
		b, err := physics.RandomSphere(12, 1, 1, 3)
		Expect(err).NotTo(HaveOccurred())
		com0, _ := physics.CenterOfMass(b)

		s := sim.New(physics.NewGravity(1, 0.05, nil), integrators.NewLeapfrog())
		result, err := s.Run(context.Background(), b, dynamo.Config{TMax: 1, MinDt: 1e-3, DtOutput: 0.25})
		Expect(err).NotTo(HaveOccurred())

		Expect(r3.Norm(physics.Momentum(result.Final))).To(BeNumerically("<", 1e-10))
		com1, _ := physics.CenterOfMass(result.Final)
		Expect(r3.Norm(r3.Sub(com1, com0))).To(BeNumerically("<", 1e-10))
	})
})
