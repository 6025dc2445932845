package domain

import "testing"

func TestRCodeString(t *testing.T) {
	cases := map[RCode]string{
		RCodeNoError:  "NOERROR",
		RCodeFormErr:  "FORMERR",
		RCodeServFail: "SERVFAIL",
		RCodeNXDomain: "NXDOMAIN",
		RCode(9):      "RCODE(9)",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("RCode(%d).String() = %q, want %q", uint8(in), got, want)
		}
	}
}

func TestRCodeIsValid(t *testing.T) {
	if !RCode(15).IsValid() {
		t.Error("RCode(15) should be valid")
	}
	if RCode(16).IsValid() {
		t.Error("RCode(16) should not be valid")
	}
}
