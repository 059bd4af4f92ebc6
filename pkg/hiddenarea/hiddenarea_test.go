package hiddenarea

import "testing"

func TestParseMaxSectors(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		wantOK     bool
		wantCurr   uint64
		wantNative uint64
	}{
		{
			name:       "hpa present",
			text:       "\tmax sectors   = 900/1000, HPA is enabled\n",
			wantOK:     true,
			wantCurr:   900,
			wantNative: 1000,
		},
		{
			name:       "no hpa",
			text:       "\tmax sectors   = 1000215216/1000215216, HPA is disabled\n",
			wantOK:     true,
			wantCurr:   1000215216,
			wantNative: 1000215216,
		},
		{
			name:   "no matching line",
			text:   "model number: ACME DRIVE\n",
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current, native, ok := parseMaxSectors(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if current != tc.wantCurr || native != tc.wantNative {
				t.Fatalf("got (%d, %d), want (%d, %d)", current, native, tc.wantCurr, tc.wantNative)
			}
		})
	}
}
