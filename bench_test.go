package lexre

import (
	"bytes"
	"testing"
)

// Generate 1MB of token-shaped test data.
func generateBenchData() []byte {
	var buf bytes.Buffer
	chunks := []string{
		"hello world ", "test123 ", "foo456bar ", "abc ", "xyz789 ",
		"quick brown fox ", "lazy dog ", "word42 ", "sample99text ",
	}
	for buf.Len() < 1024*1024 {
		for _, c := range chunks {
			buf.WriteString(c)
		}
	}
	return buf.Bytes()
}

var benchData = generateBenchData()

func BenchmarkScan_1MB(b *testing.B) {
	p := MustCompile(`[a-z]+|[0-9]+|[ \t\n]+`)
	m := p.MatcherBytes(benchData)
	b.SetBytes(int64(len(benchData)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.InBytes(benchData)
		for m.Scan() != 0 {
		}
	}
}

func BenchmarkFindNeedle_1MB(b *testing.B) {
	p := MustCompile("sample99text")
	m := p.MatcherBytes(benchData)
	b.SetBytes(int64(len(benchData)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.InBytes(benchData)
		for m.Find() != 0 {
		}
	}
}

func BenchmarkFindDigits_1MB(b *testing.B) {
	p := MustCompile("[0-9]+")
	m := p.MatcherBytes(benchData)
	b.SetBytes(int64(len(benchData)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.InBytes(benchData)
		for m.Find() != 0 {
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := Compile(`[a-zA-Z_][a-zA-Z0-9_]*|[0-9]+(\.[0-9]+)?|[ \t\n]+`)
		if err != nil {
			b.Fatal(err)
		}
	}
}
