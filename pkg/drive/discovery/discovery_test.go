package discovery

import (
	"testing"

	"github.com/stratastor/eraser/pkg/drive/types"
)

func strPtr(s string) *string { return &s }

func TestParseHPASectors(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		wantOK     bool
		wantCur    uint64
		wantNative uint64
	}{
		{
			name:       "hpa present",
			text:       "	max sectors   = 1000215216/1953525168, HPA is enabled\n",
			wantOK:     true,
			wantCur:    1000215216,
			wantNative: 1953525168,
		},
		{
			name:       "no hpa",
			text:       "	max sectors   = 1953525168/1953525168, HPA is disabled\n",
			wantOK:     true,
			wantCur:    1953525168,
			wantNative: 1953525168,
		},
		{
			name:   "no matching line",
			text:   "	model number: test drive\n	serial number: abc123\n",
			wantOK: false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cur, native, ok := parseHPASectors(c.text)
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v", ok, c.wantOK)
			}
			if !ok {
				return
			}
			if cur != c.wantCur || native != c.wantNative {
				t.Fatalf("got (%d, %d), want (%d, %d)", cur, native, c.wantCur, c.wantNative)
			}
		})
	}
}

// TestClassifyMediaByTransport asserts the tran field takes priority
// over the rotational flag, and nvme path prefix is a fallback when
// tran is absent.
func TestClassifyMediaByTransport(t *testing.T) {
	cases := []struct {
		name string
		bd   blockDevice
		want types.MediaClass
	}{
		{name: "nvme transport", bd: blockDevice{Tran: strPtr("nvme")}, want: types.MediaNVMe},
		{name: "usb spinning", bd: blockDevice{Tran: strPtr("usb"), Rota: true}, want: types.MediaSpinning},
		{name: "usb flash", bd: blockDevice{Tran: strPtr("usb"), Rota: false}, want: types.MediaFlash},
		{name: "nvme path fallback", bd: blockDevice{Path: "/dev/nvme0n1"}, want: types.MediaNVMe},
		{name: "sata rotational", bd: blockDevice{Tran: strPtr("sata"), Rota: true}, want: types.MediaSpinning},
		{name: "sata flash", bd: blockDevice{Tran: strPtr("sata"), Rota: false}, want: types.MediaFlash},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := classifyMedia(c.bd); got != c.want {
				t.Fatalf("classifyMedia() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestBlockDeviceIsMounted(t *testing.T) {
	root := blockDevice{
		Children: []blockDevice{
			{Mountpoint: nil},
			{Children: []blockDevice{{Mountpoint: strPtr("/mnt/data")}}},
		},
	}
	if !root.isMounted() {
		t.Fatal("expected nested child mountpoint to mark device as mounted")
	}

	unmounted := blockDevice{Children: []blockDevice{{Mountpoint: strPtr("")}}}
	if unmounted.isMounted() {
		t.Fatal("expected empty mountpoint string to not count as mounted")
	}
}

func TestKelvinToCelsius(t *testing.T) {
	if got := kelvinToCelsius(300); got != 27 {
		t.Fatalf("kelvinToCelsius(300) = %d, want 27", got)
	}
	if got := kelvinToCelsius(45); got != 45 {
		t.Fatalf("kelvinToCelsius(45) = %d, want 45 (already celsius)", got)
	}
}
