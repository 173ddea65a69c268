package snmpquery

import "testing"

func TestHostPort(t *testing.T) {
	cases := []struct {
		in   string
		host string
		port string
	}{
		{"192.168.1.20", "192.168.1.20", ""},
		{"192.168.1.20:1161", "192.168.1.20", "1161"},
		{"snmp://printer.local", "printer.local", ""},
		{"ipp://printer.local:631/printers/q", "printer.local", "631"},
		{"  ", "", ""},
	}
	for _, tc := range cases {
		host, port := hostPort(tc.in)
		if host != tc.host || port != tc.port {
			t.Errorf("hostPort(%q) = %q,%q want %q,%q", tc.in, host, port, tc.host, tc.port)
		}
	}
}

func TestToString(t *testing.T) {
	if s, ok := toString("Black Toner"); !ok || s != "Black Toner" {
		t.Errorf("string value = %q,%v", s, ok)
	}
	if s, ok := toString([]byte("Cyan Toner")); !ok || s != "Cyan Toner" {
		t.Errorf("octet-string bytes = %q,%v", s, ok)
	}
	if _, ok := toString(42); ok {
		t.Error("integer accepted as string")
	}
	if _, ok := toString(nil); ok {
		t.Error("nil accepted as string")
	}
}

func TestOIDIndex(t *testing.T) {
	if got := oidIndex(oidSupplyLevel+".3", oidSupplyLevel); got != "3" {
		t.Errorf("index = %q, want 3", got)
	}
	if got := oidIndex(".1.3.6.1.2.1.43.12.1.1.4.1.1", oidSupplyLevel); got != "" {
		t.Errorf("foreign oid yielded index %q", got)
	}
}
