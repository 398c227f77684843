//go:build go1.18

package domain

import "testing"

// FuzzParseHash checks that parsing never panics and that accepted input
// round-trips through String.
func FuzzParseHash(f *testing.F) {
	f.Add("")
	f.Add("0x")
	f.Add("0000000000000000000000000000000000000000000000000000000000000000")
	f.Add("not-hex")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		h, err := ParseHash(input)
		if err != nil {
			return
		}
		again, err := ParseHash(h.String())
		if err != nil {
			t.Fatalf("valid hash failed round-trip: %v", err)
		}
		if again != h {
			t.Fatal("round-trip changed hash value")
		}
	})
}
