package visualizer_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
	"github.com/san-kum/dsaviz/internal/visualizer"
)

type frameLog struct {
	mu     sync.Mutex
	frames []engine.Frame
}

func (l *frameLog) OnStep(f engine.Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames = append(l.frames, f)
}

func (l *frameLog) Frames() []engine.Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]engine.Frame(nil), l.frames...)
}

func wait(h *visualizer.Handle) visualizer.Result {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := h.Wait(ctx)
	Expect(err).NotTo(HaveOccurred())
	return res
}

var _ = Describe("Visualizer", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("generating data", func() {
		It("rejects data of another model", func() {
			v := visualizer.New(visual.KindArray, visualizer.WithPacer(engine.InstantPacer{}))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindGrid})
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})

		It("rejects sizes outside the accepted range", func() {
			v := visualizer.New(visual.KindArray)
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindRandom, Size: dataset.MaxSize + 1})
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})

		It("is refused while a run is active", func() {
			gate := engine.NewManualPacer()
			v := visualizer.New(visual.KindArray, visualizer.WithPacer(gate))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindValues, Values: []int{4, 3, 2, 1}})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "bubble", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())

			_, err = v.Generate(visualizer.GenParams{Kind: dataset.KindRandom})
			Expect(err).To(MatchError(engine.ErrInvalidState))

			Expect(v.Cancel(h)).To(Succeed())
			Expect(v.Status()).To(Equal(visualizer.StatusCancelled))
		})
	})

	Describe("starting a run", func() {
		var v *visualizer.Visualizer

		BeforeEach(func() {
			v = visualizer.New(visual.KindArray, visualizer.WithPacer(engine.InstantPacer{}))
		})

		It("runs bubble sort to completion", func() {
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindValues, Values: []int{5, 3, 8, 1}})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "bubble", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())
			res := wait(h)

			Expect(res.Status).To(Equal(visualizer.StatusCompleted))
			Expect(res.StepsTaken).To(Equal(10))
			Expect(res.Metrics).To(HaveKeyWithValue("comparisons", 6.0))
			Expect(res.Metrics).To(HaveKeyWithValue("swaps", 4.0))
			Expect(res.Metrics).To(HaveKeyWithValue("inversions", 0.0))
			Expect(v.Snapshot().Values()).To(Equal([]int{1, 3, 5, 8}))
			Expect(v.Status()).To(Equal(visualizer.StatusCompleted))
			Expect(v.Steps()).To(Equal(10))
		})

		It("refuses to re-sort completed data until reset", func() {
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindRandom, Size: 8, Seed: 3})
			Expect(err).NotTo(HaveOccurred())
			h, err := v.Start(ctx, "selection", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())
			wait(h)

			_, err = v.Start(ctx, "insertion", algorithms.Params{})
			Expect(err).To(MatchError(engine.ErrInvalidState))

			Expect(v.Reset()).To(Succeed())
			Expect(v.Status()).To(Equal(visualizer.StatusIdle))
			h, err = v.Start(ctx, "insertion", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())
			Expect(wait(h).Status).To(Equal(visualizer.StatusCompleted))
		})

		It("reports binary search over unordered data before any step", func() {
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindValues, Values: []int{9, 2, 7}})
			Expect(err).NotTo(HaveOccurred())

			_, err = v.Start(ctx, "binary", algorithms.Params{Target: 7})
			Expect(err).To(MatchError(engine.ErrPreconditionViolation))
			Expect(v.Status()).To(Equal(visualizer.StatusIdle))
			Expect(v.Steps()).To(BeZero())
		})

		It("finds a target with binary search", func() {
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindSorted, Size: 6})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "binary", algorithms.Params{Target: 20})
			Expect(err).NotTo(HaveOccurred())
			res := wait(h)

			Expect(res.StepsTaken).To(Equal(3))
			Expect(res.Found).To(HaveValue(BeTrue()))
			Expect(res.Index).To(HaveValue(Equal(3)))
		})

		It("allows searching again after a completed search", func() {
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindSorted, Size: 10})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "linear", algorithms.Params{Target: 15})
			Expect(err).NotTo(HaveOccurred())
			Expect(wait(h).Index).To(HaveValue(Equal(2)))

			h, err = v.Start(ctx, "linear", algorithms.Params{Target: 99})
			Expect(err).NotTo(HaveOccurred())
			res := wait(h)
			Expect(res.Found).To(HaveValue(BeFalse()))
			Expect(res.StepsTaken).To(Equal(10))
		})

		It("rejects unknown algorithms and out of range targets", func() {
			_, err := v.Start(ctx, "bogosort", algorithms.Params{})
			Expect(err).To(MatchError(engine.ErrUnknownAlgorithm))

			_, err = v.Start(ctx, "linear", algorithms.Params{Target: 0})
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})

		It("rejects algorithms for another model", func() {
			_, err := v.Start(ctx, "bfs", algorithms.Params{})
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})

		It("finishes immediately on empty data", func() {
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindValues})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "bubble", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())
			res := wait(h)
			Expect(res.Status).To(Equal(visualizer.StatusCompleted))
			Expect(res.StepsTaken).To(BeZero())
		})
	})

	Describe("graph and tree runs", func() {
		It("reports the BFS visit order", func() {
			v := visualizer.New(visual.KindGraph, visualizer.WithPacer(engine.InstantPacer{}))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindGrid})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "bfs", algorithms.Params{Start: 0})
			Expect(err).NotTo(HaveOccurred())
			res := wait(h)
			Expect(res.Order).To(Equal([]int{0, 1, 4, 2, 5, 8, 3, 6, 9, 7, 10, 11}))
			Expect(res.Metrics).To(HaveKeyWithValue("coverage", 1.0))
		})

		It("rejects duplicate inserts and keeps the tree ordered", func() {
			v := visualizer.New(visual.KindTree, visualizer.WithPacer(engine.InstantPacer{}))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindTree, Sample: true})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "insert", algorithms.Params{Value: 45})
			Expect(err).NotTo(HaveOccurred())
			Expect(wait(h).StepsTaken).To(Equal(3))

			_, err = v.Start(ctx, "insert", algorithms.Params{Value: 45})
			Expect(err).To(MatchError(engine.ErrInvalidInput))

			h, err = v.Start(ctx, "inorder", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())
			Expect(wait(h).Order).To(Equal([]int{20, 30, 40, 45, 50, 60, 70, 80}))
		})
	})

	Describe("pausing", func() {
		var (
			v    *visualizer.Visualizer
			gate *engine.Gate
			h    *visualizer.Handle
		)

		BeforeEach(func() {
			gate = engine.NewManualPacer()
			v = visualizer.New(visual.KindArray, visualizer.WithPacer(gate))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindValues, Values: []int{1, 2, 3, 4, 5, 6}})
			Expect(err).NotTo(HaveOccurred())

			h, err = v.Start(ctx, "linear", algorithms.Params{Target: 6})
			Expect(err).NotTo(HaveOccurred())
			Eventually(v.Steps).Should(Equal(1))
		})

		AfterEach(func() {
			Expect(v.Cancel(h)).To(Succeed())
		})

		It("holds at a step boundary and resumes from the same position", func() {
			Expect(v.Pause()).To(Succeed())
			Expect(v.Status()).To(Equal(visualizer.StatusPaused))

			gate.Open()
			Consistently(v.Steps, 50*time.Millisecond).Should(Equal(1))

			Expect(v.Step()).To(Succeed())
			Eventually(v.Steps).Should(Equal(2))
			Consistently(v.Steps, 50*time.Millisecond).Should(Equal(2))

			Expect(v.Resume()).To(Succeed())
			res := wait(h)
			Expect(res.Status).To(Equal(visualizer.StatusCompleted))
			Expect(res.Index).To(HaveValue(Equal(5)))
			Expect(res.StepsTaken).To(Equal(6))
		})

		It("refuses control calls that do not fit the state", func() {
			Expect(v.Resume()).To(MatchError(engine.ErrInvalidState))
			Expect(v.Step()).To(MatchError(engine.ErrInvalidState))

			_, err := v.Start(ctx, "linear", algorithms.Params{Target: 1})
			Expect(err).To(MatchError(engine.ErrInvalidState))

			Expect(v.Pause()).To(Succeed())
			Expect(v.Pause()).To(Succeed())
		})

		It("can be cancelled while paused", func() {
			Expect(v.Pause()).To(Succeed())
			Expect(v.Cancel(h)).To(Succeed())

			res := wait(h)
			Expect(res.Status).To(Equal(visualizer.StatusCancelled))
			Expect(res.StepsTaken).To(Equal(1))
			Expect(v.Status()).To(Equal(visualizer.StatusCancelled))
			Expect(v.Pause()).To(MatchError(engine.ErrInvalidState))
		})
	})

	Describe("cancelling", func() {
		It("leaves the scene as the last step mutated it", func() {
			gate := engine.NewManualPacer()
			v := visualizer.New(visual.KindArray, visualizer.WithPacer(gate))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindValues, Values: []int{4, 3, 2, 1}})
			Expect(err).NotTo(HaveOccurred())

			h, err := v.Start(ctx, "bubble", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())
			Eventually(v.Steps).Should(Equal(1))
			gate.Advance()
			Eventually(v.Steps).Should(Equal(2))

			Expect(v.Cancel(h)).To(Succeed())
			Expect(v.Cancel(h)).To(Succeed())

			res := wait(h)
			Expect(res.Status).To(Equal(visualizer.StatusCancelled))
			Expect(res.StepsTaken).To(Equal(2))

			// compare then swap of the first pair
			scene := v.Snapshot()
			Expect(scene.Values()).To(Equal([]int{3, 4, 2, 1}))
			Expect(scene.Elements[0].Tag).To(Equal(visual.ElementSwapping))
		})

		It("is a no-op without an active run", func() {
			v := visualizer.New(visual.KindArray)
			Expect(v.Cancel(nil)).To(Succeed())
		})

		It("follows the start context", func() {
			v := visualizer.New(visual.KindArray, visualizer.WithPacer(engine.NewManualPacer()))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindRandom, Seed: 1})
			Expect(err).NotTo(HaveOccurred())

			runCtx, cancel := context.WithCancel(ctx)
			h, err := v.Start(runCtx, "bubble", algorithms.Params{})
			Expect(err).NotTo(HaveOccurred())
			cancel()

			Expect(wait(h).Status).To(Equal(visualizer.StatusCancelled))
		})
	})

	Describe("determinism", func() {
		record := func(v *visualizer.Visualizer, algorithm string, params algorithms.Params) []engine.Frame {
			log := &frameLog{}
			unsubscribe := v.Subscribe(log)
			defer unsubscribe()

			h, err := v.Start(context.Background(), algorithm, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(wait(h).Status).To(Equal(visualizer.StatusCompleted))
			return log.Frames()
		}

		DescribeTable("cancel, reset and re-run reproduces the step sequence",
			func(kind visual.Kind, gen visualizer.GenParams, algorithm string, params algorithms.Params) {
				fresh := visualizer.New(kind, visualizer.WithPacer(engine.InstantPacer{}))
				_, err := fresh.Generate(gen)
				Expect(err).NotTo(HaveOccurred())
				want := record(fresh, algorithm, params)

				gate := engine.NewManualPacer()
				v := visualizer.New(kind, visualizer.WithPacer(gate))
				_, err = v.Generate(gen)
				Expect(err).NotTo(HaveOccurred())

				h, err := v.Start(context.Background(), algorithm, params)
				Expect(err).NotTo(HaveOccurred())
				gate.Release(3)
				Eventually(v.Steps).Should(BeNumerically(">=", 2))
				Expect(v.Cancel(h)).To(Succeed())

				Expect(v.Reset()).To(Succeed())
				Expect(v.Steps()).To(BeZero())
				gate.Open()
				got := record(v, algorithm, params)

				Expect(got).To(HaveLen(len(want)))
				for i := range want {
					Expect(got[i].Step).To(Equal(want[i].Step))
					Expect(got[i].Kind).To(Equal(want[i].Kind))
					Expect(got[i].Scene).To(Equal(want[i].Scene))
				}
			},
			Entry("bubble sort", visual.KindArray, visualizer.GenParams{Kind: dataset.KindRandom, Size: 12, Seed: 99}, "bubble", algorithms.Params{}),
			Entry("tree sort", visual.KindArray, visualizer.GenParams{Kind: dataset.KindRandom, Size: 10, Seed: 5}, "treesort", algorithms.Params{}),
			Entry("linear search", visual.KindArray, visualizer.GenParams{Kind: dataset.KindUnique, Size: 15, Seed: 11}, "linear", algorithms.Params{Target: 50}),
			Entry("dfs", visual.KindGraph, visualizer.GenParams{Kind: dataset.KindGrid}, "dfs", algorithms.Params{Start: 5}),
			Entry("bst insert", visual.KindTree, visualizer.GenParams{Kind: dataset.KindTree, Sample: true}, "insert", algorithms.Params{Value: 65}),
		)
	})

	Describe("speed and subscriptions", func() {
		It("validates speed", func() {
			v := visualizer.New(visual.KindArray)
			Expect(v.SetSpeed(0)).To(MatchError(engine.ErrInvalidInput))
			Expect(v.SetSpeed(101)).To(MatchError(engine.ErrInvalidInput))
			Expect(v.SetSpeed(75)).To(Succeed())
			Expect(v.Speed()).To(Equal(75))
		})

		It("stops delivering frames after unsubscribe", func() {
			v := visualizer.New(visual.KindArray, visualizer.WithPacer(engine.InstantPacer{}))
			_, err := v.Generate(visualizer.GenParams{Kind: dataset.KindValues, Values: []int{2, 1}})
			Expect(err).NotTo(HaveOccurred())

			log := &frameLog{}
			unsubscribe := v.Subscribe(log)
			h, err := v.Start(ctx, "linear", algorithms.Params{Target: 1})
			Expect(err).NotTo(HaveOccurred())
			wait(h)
			seen := len(log.Frames())
			Expect(seen).To(BeNumerically(">", 0))

			unsubscribe()
			unsubscribe()
			h, err = v.Start(ctx, "linear", algorithms.Params{Target: 2})
			Expect(err).NotTo(HaveOccurred())
			wait(h)
			Expect(log.Frames()).To(HaveLen(seen))
		})
	})
})
