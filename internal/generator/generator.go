// Package generator produces synthetic transaction ledgers with injected
// fraud patterns, used for demos and load testing the detection pipeline.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/fraudsight/internal/domain"
)

// Dataset is the generated ledger plus a tally of what was injected.
type Dataset struct {
	Transactions []domain.Transaction
	Injected     InjectionSummary
}

// InjectionSummary records how many instances of each pattern the generator
// planted, so a demo run can be checked against expectations.
type InjectionSummary struct {
	CycleRings     int
	FanInBursts    int
	FanOutBursts   int
	ShellChains    int
	MerchantDecoys int
	PayrollDecoys  int
}

// Generator produces deterministic synthetic ledgers for a given seed.
type Generator struct {
	cfg   Config
	rand  *rand.Rand
	txSeq int
	idSeq int
	base  time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumAccounts <= 0 {
		cfg.NumAccounts = def.NumAccounts
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = def.NumTransactions
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
		// Fixed epoch so that equal seeds reproduce byte-identical ledgers.
		base: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generate synthesizes the ledger. Pattern accounts are disjoint from the
// noise population so that injected structures stay clean. It respects
// context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	var dataset Dataset

	noise := make([]string, g.cfg.NumAccounts)
	for i := range noise {
		noise[i] = g.nextAccount()
	}

	for i := 0; i < g.cfg.CycleRings; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		g.injectCycle(&dataset, 3+g.rand.Intn(3))
		dataset.Injected.CycleRings++
	}
	for i := 0; i < g.cfg.FanInBursts; i++ {
		g.injectFan(&dataset, true)
		dataset.Injected.FanInBursts++
	}
	for i := 0; i < g.cfg.FanOutBursts; i++ {
		g.injectFan(&dataset, false)
		dataset.Injected.FanOutBursts++
	}
	for i := 0; i < g.cfg.ShellChains; i++ {
		g.injectShellChain(&dataset)
		dataset.Injected.ShellChains++
	}
	for i := 0; i < g.cfg.MerchantDecoys; i++ {
		g.injectMerchant(&dataset, noise)
		dataset.Injected.MerchantDecoys++
	}
	for i := 0; i < g.cfg.PayrollDecoys; i++ {
		g.injectPayroll(&dataset)
		dataset.Injected.PayrollDecoys++
	}

	for len(dataset.Transactions) < g.cfg.NumTransactions {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		senderIdx := g.rand.Intn(len(noise))
		receiverIdx := g.rand.Intn(len(noise))
		if senderIdx == receiverIdx {
			receiverIdx = (receiverIdx + 1) % len(noise)
		}
		dataset.Transactions = append(dataset.Transactions, g.transfer(
			noise[senderIdx],
			noise[receiverIdx],
			100+g.rand.Float64()*4900,
			time.Duration(g.rand.Intn(90*24*60))*time.Minute,
		))
	}

	return dataset, nil
}

// injectCycle plants a closed loop of the given length. Amounts shrink a few
// percent per hop, mimicking fees skimmed at each step.
func (g *Generator) injectCycle(dataset *Dataset, length int) {
	members := g.freshAccounts(length)
	amount := 5000 + g.rand.Float64()*5000
	start := time.Duration(g.rand.Intn(60*24)) * time.Hour

	for i := 0; i < length; i++ {
		next := members[(i+1)%length]
		offset := start + time.Duration(i*24)*time.Hour
		dataset.Transactions = append(dataset.Transactions, g.transfer(members[i], next, amount, offset))
		amount *= 0.95 + g.rand.Float64()*0.03
	}
}

// injectFan plants a structuring burst: 12 spokes moving sub-threshold
// amounts through one hub inside a 48 hour window.
func (g *Generator) injectFan(dataset *Dataset, inbound bool) {
	hub := g.nextAccount()
	spokes := g.freshAccounts(12)
	start := time.Duration(g.rand.Intn(60*24)) * time.Hour

	for i, spoke := range spokes {
		offset := start + time.Duration(i*4)*time.Hour
		amount := 400 + g.rand.Float64()*500
		if inbound {
			dataset.Transactions = append(dataset.Transactions, g.transfer(spoke, hub, amount, offset))
		} else {
			dataset.Transactions = append(dataset.Transactions, g.transfer(hub, spoke, amount, offset))
		}
	}
}

// injectShellChain plants Source→S1→...→S4→Dest where every intermediary
// moves money exactly twice (one in, one out).
func (g *Generator) injectShellChain(dataset *Dataset) {
	chain := g.freshAccounts(6)
	amount := 8000 + g.rand.Float64()*4000
	start := time.Duration(g.rand.Intn(60*24)) * time.Hour

	for i := 0; i < len(chain)-1; i++ {
		offset := start + time.Duration(i*12)*time.Hour
		dataset.Transactions = append(dataset.Transactions, g.transfer(chain[i], chain[i+1], amount, offset))
		amount *= 0.97
	}
}

// injectMerchant plants a legitimate high-volume collector: inbound payments
// from many noise accounts spread over a month, with only a couple of
// outbound settlements.
func (g *Generator) injectMerchant(dataset *Dataset, noise []string) {
	merchant := g.nextAccount()
	start := time.Duration(g.rand.Intn(30*24)) * time.Hour

	payers := g.rand.Perm(len(noise))[:20]
	for i, idx := range payers {
		offset := start + time.Duration(i*36)*time.Hour
		dataset.Transactions = append(dataset.Transactions, g.transfer(noise[idx], merchant, 20+g.rand.Float64()*200, offset))
	}
	settlement := g.nextAccount()
	for i := 0; i < 2; i++ {
		offset := start + time.Duration(300+i*120)*time.Hour
		dataset.Transactions = append(dataset.Transactions, g.transfer(merchant, settlement, 1500+g.rand.Float64()*500, offset))
	}
}

// injectPayroll plants a legitimate employer: identical salary amounts to a
// fixed roster on a strict biweekly schedule.
func (g *Generator) injectPayroll(dataset *Dataset) {
	employer := g.nextAccount()
	employees := g.freshAccounts(8)
	salary := float64(2000 + g.rand.Intn(2000))
	start := time.Duration(g.rand.Intn(10*24)) * time.Hour

	for round := 0; round < 3; round++ {
		offset := start + time.Duration(round*14*24)*time.Hour
		for i, employee := range employees {
			dataset.Transactions = append(dataset.Transactions, g.transfer(employer, employee, salary, offset+time.Duration(i)*time.Minute))
		}
	}
}

func (g *Generator) transfer(sender, receiver string, amount float64, offset time.Duration) domain.Transaction {
	g.txSeq++
	return domain.Transaction{
		ID:         fmt.Sprintf("TX%07d", g.txSeq),
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     decimal.NewFromFloat(amount).Round(2),
		Timestamp:  g.base.Add(offset),
	}
}

func (g *Generator) nextAccount() string {
	g.idSeq++
	return fmt.Sprintf("ACC_%05d", g.idSeq)
}

func (g *Generator) freshAccounts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = g.nextAccount()
	}
	return out
}
