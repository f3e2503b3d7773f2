package screener

import (
	"context"
	"errors"
	"testing"
)

func TestStaticUniverse_ReturnsCopy(t *testing.T) {
	u := StaticUniverse{"AAPL", "MSFT"}
	got := u.Symbols(context.Background())
	got[0] = "CHANGED"

	if u[0] != "AAPL" {
		t.Error("Symbols should not expose the underlying list")
	}
}

func TestDynamicUniverse(t *testing.T) {
	fallback := []string{"BTC", "ETH"}

	tests := []struct {
		name   string
		source *mockSymbolSource
		want   []string
	}{
		{"upstream list", &mockSymbolSource{symbols: []string{"SOL", "JUP"}}, []string{"SOL", "JUP"}},
		{"upstream failure", &mockSymbolSource{err: errors.New("503")}, fallback},
		{"empty upstream", &mockSymbolSource{}, fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewDynamicUniverse("binance", tt.source, 30, fallback)
			if got := u.Symbols(context.Background()); !equalStrings(got, tt.want) {
				t.Errorf("Symbols() = %v, want %v", got, tt.want)
			}
		})
	}
}
