//go:build integration

package integration

import (
	"context"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/focusgate/focusgate/internal/daemon"
	"github.com/focusgate/focusgate/internal/domain"
	"github.com/focusgate/focusgate/internal/infra"
	"github.com/focusgate/focusgate/internal/usecase"
)

// fakeDesktop stands in for the OS boundary: process table, process
// control, and the event push channel.
type fakeDesktop struct {
	mu         sync.Mutex
	running    []domain.ProcessInfo
	terminated []string
	activated  []string
	events     chan domain.ProcessEvent
}

func (f *fakeDesktop) RunningProcesses() ([]domain.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ProcessInfo(nil), f.running...), nil
}

func (f *fakeDesktop) Terminate(identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, identifier)
	kept := f.running[:0]
	for _, p := range f.running {
		if p.Identifier != identifier {
			kept = append(kept, p)
		}
	}
	f.running = kept
	return nil
}

func (f *fakeDesktop) Activate(identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, identifier)
	return nil
}

func (f *fakeDesktop) SelfIdentifier() string { return "focusgate" }

func (f *fakeDesktop) Subscribe() (<-chan domain.ProcessEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = make(chan domain.ProcessEvent, 16)
	return f.events, nil
}

func (f *fakeDesktop) Unsubscribe() {}

func (f *fakeDesktop) launch(id, name string) {
	f.mu.Lock()
	f.running = append(f.running, domain.ProcessInfo{Identifier: id, DisplayName: name})
	ch := f.events
	f.mu.Unlock()
	ch <- domain.ProcessEvent{
		Kind:    domain.EventDidLaunch,
		Process: domain.ProcessInfo{Identifier: id, DisplayName: name},
	}
}

func (f *fakeDesktop) terminatedList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.terminated...)
}

func (f *fakeDesktop) runningIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.running))
	for _, p := range f.running {
		ids = append(ids, p.Identifier)
	}
	return ids
}

var _ = Describe("Session enforcement", func() {
	var (
		tmpDir  string
		desktop *fakeDesktop
		history *infra.EncryptedHistory
		key     []byte
		runner  *daemon.Runner
		cancel  context.CancelFunc
		runDone chan struct{}
	)

	newRunner := func(tick time.Duration) {
		engine := usecase.NewEngine(desktop, nil, nil, false, zap.NewNop())
		ctrl := usecase.NewController(
			usecase.ControllerConfig{TickInterval: tick},
			engine, desktop, history,
			map[string]bool{"shell": true},
			zap.NewNop(),
		)
		runner = daemon.NewRunner(ctrl, zap.NewNop())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		runDone = make(chan struct{})
		go func() {
			defer GinkgoRecover()
			_ = runner.Run(ctx)
			close(runDone)
		}()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "focusgate-integration-*")
		Expect(err).NotTo(HaveOccurred())

		key, err = infra.EnsureKey(infra.NewFileKeyProvider(tmpDir))
		Expect(err).NotTo(HaveOccurred())

		history, err = infra.NewEncryptedHistory(tmpDir, key)
		Expect(err).NotTo(HaveOccurred())

		desktop = &fakeDesktop{}
	})

	AfterEach(func() {
		cancel()
		Eventually(runDone).Should(BeClosed())
		Expect(history.Close()).To(Succeed())
		Expect(os.RemoveAll(tmpDir)).To(Succeed())
	})

	It("kills a running blocked app the instant a block session starts", func() {
		desktop.running = []domain.ProcessInfo{
			{Identifier: "com.x", DisplayName: "X"},
			{Identifier: "shell", DisplayName: "Shell"},
		}
		newRunner(time.Hour)

		err := runner.StartSession(
			[]domain.AppSelection{{Identifier: "com.x", DisplayName: "X"}},
			domain.ModeBlockList, 25)
		Expect(err).NotTo(HaveOccurred())

		Expect(desktop.terminatedList()).To(ConsistOf("com.x"))
		Expect(desktop.runningIDs()).To(ConsistOf("shell"))
	})

	It("denies an out-of-scope launch during an allow session", func() {
		newRunner(time.Hour)

		err := runner.StartSession(
			[]domain.AppSelection{{Identifier: "com.a", DisplayName: "A"}},
			domain.ModeAllowList, 25)
		Expect(err).NotTo(HaveOccurred())

		desktop.launch("com.b", "B")

		Eventually(desktop.terminatedList).Should(ConsistOf("com.b"))
		Expect(runner.Status().Active).To(BeTrue())
	})

	It("records a naturally completed session to the encrypted store", func() {
		newRunner(2 * time.Millisecond)

		err := runner.StartSession(
			[]domain.AppSelection{{Identifier: "com.a", DisplayName: "Alpha"}},
			domain.ModeAllowList, 0) // floors to one second
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() int {
			records, err := history.Recent(10)
			Expect(err).NotTo(HaveOccurred())
			return len(records)
		}).Should(Equal(1))

		records, err := history.Recent(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records[0].DurationMinutes).To(Equal(1))
		Expect(records[0].Mode).To(Equal(domain.ModeAllowList))
		Expect(records[0].AppNames).To(ConsistOf("Alpha"))
		Expect(records[0].ID).NotTo(BeEmpty())

		runner.AcknowledgeCompletion()
		Expect(runner.Status().Active).To(BeFalse())
	})

	It("persists records across store reopen with the same key", func() {
		newRunner(2 * time.Millisecond)

		err := runner.StartSession(
			[]domain.AppSelection{{Identifier: "com.a", DisplayName: "Alpha"}},
			domain.ModeAllowList, 0)
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() int {
			records, _ := history.Recent(10)
			return len(records)
		}).Should(Equal(1))

		Expect(history.Close()).To(Succeed())

		reopened, err := infra.NewEncryptedHistory(tmpDir, key)
		Expect(err).NotTo(HaveOccurred())
		records, err := reopened.Recent(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(reopened.Close()).To(Succeed())

		// AfterEach closes again; reopen so that succeeds.
		history, err = infra.NewEncryptedHistory(tmpDir, key)
		Expect(err).NotTo(HaveOccurred())
	})

	It("records nothing for a manual end", func() {
		newRunner(time.Hour)

		err := runner.StartSession(
			[]domain.AppSelection{{Identifier: "com.a", DisplayName: "A"}},
			domain.ModeAllowList, 25)
		Expect(err).NotTo(HaveOccurred())

		runner.EndSession(false)

		records, err := history.Recent(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})
})
