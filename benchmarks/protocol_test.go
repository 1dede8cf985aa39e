package benchmarks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/pas"
	"github.com/randalmurphal/debategraph/pkg/turnstream"
)

var (
	decision = "AGENT: Super Agent\nTASK: continue\nREASONING: Costs are still unquantified.\nNEXT AGENT: Dr. Lin\nEND"
	turn     = "AGENT: Dr. Lin\nEMOTION: calm\nRESPONSE: " + strings.Repeat("Regulate high-risk uses first. ", 40) + "\nEND"
	roster   = pas.EncodeRoster(
		pas.Persona{Name: "Dr. Lin", Role: "Economist", Goal: "Quantify costs"},
		pas.Persona{Name: "Maya", Role: "Engineer", Goal: "Ship safely"},
		pas.Persona{Name: "Omar", Role: "Ethicist", Goal: "Protect rights"},
		pas.Persona{Name: "Ana", Role: "Lawyer", Goal: "Keep it enforceable"},
	)
)

// chunk splits s into pieces of n bytes, as a provider stream would.
func chunk(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	return append(out, s)
}

func BenchmarkDecodeDecision(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = pas.DecodeDecision(decision)
	}
}

func BenchmarkSplitStubs(b *testing.B) {
	for i := 0; i < b.N; i++ {
		pas.SplitStubs(roster)
	}
}

func BenchmarkParseRoster(b *testing.B) {
	for i := 0; i < b.N; i++ {
		pas.ParseRoster(roster)
	}
}

func benchmarkParser(b *testing.B, size int) {
	chunks := chunk(turn, size)
	b.SetBytes(int64(len(turn)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := turnstream.New()
		for _, c := range chunks {
			p.Feed(c)
		}
		p.Finish()
	}
}

func BenchmarkParser_Chunk_1(b *testing.B)  { benchmarkParser(b, 1) }
func BenchmarkParser_Chunk_8(b *testing.B)  { benchmarkParser(b, 8) }
func BenchmarkParser_Chunk_64(b *testing.B) { benchmarkParser(b, 64) }

func BenchmarkEncodeEvent(b *testing.B) {
	var buf bytes.Buffer
	e := events.New(events.AgentResponseToken, map[string]string{"content": " Regulate"})
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = events.Encode(&buf, e)
	}
}
