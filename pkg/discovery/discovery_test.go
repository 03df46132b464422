package discovery

import (
	"errors"
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
)

func TestEncodeDecodeHostTXT(t *testing.T) {
	info := &HostInfo{
		HostID:    "modhost-a1b2c3d4",
		Version:   "1.0.0",
		UnitCount: 2,
		Port:      7610,
	}

	txt := EncodeHostTXT(info)
	if txt[TXTKeyHostID] != "modhost-a1b2c3d4" {
		t.Errorf("id = %q", txt[TXTKeyHostID])
	}
	if txt[TXTKeyVersion] != "1.0.0" {
		t.Errorf("ver = %q", txt[TXTKeyVersion])
	}
	if txt[TXTKeyUnitCount] != "2" {
		t.Errorf("units = %q", txt[TXTKeyUnitCount])
	}

	decoded, err := DecodeHostTXT(txt)
	if err != nil {
		t.Fatalf("DecodeHostTXT() error = %v", err)
	}
	if decoded.HostID != info.HostID || decoded.Version != info.Version || decoded.UnitCount != info.UnitCount {
		t.Errorf("decoded = %+v, want %+v", decoded, info)
	}
}

func TestDecodeHostTXTMissingID(t *testing.T) {
	_, err := DecodeHostTXT(TXTRecordMap{TXTKeyVersion: "1.0.0"})
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("error = %v, want ErrMissingRequired", err)
	}
}

func TestDecodeHostTXTBadUnitCount(t *testing.T) {
	txt := TXTRecordMap{
		TXTKeyHostID:    "h",
		TXTKeyUnitCount: "many",
	}
	if _, err := DecodeHostTXT(txt); !errors.Is(err, ErrInvalidTXT) {
		t.Errorf("error = %v, want ErrInvalidTXT", err)
	}

	txt[TXTKeyUnitCount] = "-1"
	if _, err := DecodeHostTXT(txt); !errors.Is(err, ErrInvalidTXT) {
		t.Errorf("error = %v, want ErrInvalidTXT for negative count", err)
	}
}

func TestDecodeHostTXTOptionalFields(t *testing.T) {
	info, err := DecodeHostTXT(TXTRecordMap{TXTKeyHostID: "h"})
	if err != nil {
		t.Fatalf("DecodeHostTXT() error = %v", err)
	}
	if info.Version != "" || info.UnitCount != 0 {
		t.Errorf("decoded = %+v, want zero optional fields", info)
	}
}

func TestTXTRecordsRoundTrip(t *testing.T) {
	txt := TXTRecordMap{"id": "host", "ver": "1.0", "units": "3"}

	strs := TXTRecordsToStrings(txt)
	if len(strs) != 3 {
		t.Fatalf("TXTRecordsToStrings() returned %d entries", len(strs))
	}

	back := StringsToTXTRecords(strs)
	for k, v := range txt {
		if back[k] != v {
			t.Errorf("round trip lost %s=%s, got %q", k, v, back[k])
		}
	}
}

func TestStringsToTXTRecordsMalformed(t *testing.T) {
	txt := StringsToTXTRecords([]string{"id=host", "novalue", "=empty", "k=v=w"})
	if len(txt) != 2 {
		t.Fatalf("parsed %d entries, want 2: %v", len(txt), txt)
	}
	if txt["id"] != "host" {
		t.Errorf("id = %q", txt["id"])
	}
	// Values keep embedded '='
	if txt["k"] != "v=w" {
		t.Errorf("k = %q, want v=w", txt["k"])
	}
}

func TestHostServiceAddr(t *testing.T) {
	svc := &HostService{
		Host: "hostname.local.",
		Port: 7610,
	}
	if got := svc.Addr(); got != "hostname.local.:7610" {
		t.Errorf("Addr() = %q", got)
	}

	svc.Addresses = []net.IP{net.ParseIP("192.168.1.10")}
	if got := svc.Addr(); got != "192.168.1.10:7610" {
		t.Errorf("Addr() = %q, want resolved IP preferred", got)
	}
}

func TestEntryToHostService(t *testing.T) {
	entry := &zeroconf.ServiceEntry{}
	entry.Instance = "modhost-a1b2c3d4"
	entry.Service = ServiceType
	entry.Domain = "local."
	entry.HostName = "box.local."
	entry.Port = 7610
	entry.Text = []string{"id=modhost-a1b2c3d4", "ver=1.0.0", "units=1"}
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}

	svc := entryToHostService(entry)
	if svc == nil {
		t.Fatal("entryToHostService() returned nil")
	}
	if svc.HostID != "modhost-a1b2c3d4" || svc.UnitCount != 1 || svc.Port != 7610 {
		t.Errorf("svc = %+v", svc)
	}
	if len(svc.Addresses) != 1 {
		t.Errorf("Addresses = %v", svc.Addresses)
	}
}

func TestEntryToHostServiceBadTXT(t *testing.T) {
	entry := &zeroconf.ServiceEntry{}
	entry.Text = []string{"ver=1.0.0"}
	if svc := entryToHostService(entry); svc != nil {
		t.Errorf("entryToHostService() = %+v, want nil for missing host ID", svc)
	}
}

func TestMergeAddresses(t *testing.T) {
	a := []net.IP{net.ParseIP("10.0.0.1")}
	b := []net.IP{net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2")}

	merged := mergeAddresses(a, b)
	if len(merged) != 2 {
		t.Errorf("mergeAddresses() = %v, want 2 unique addresses", merged)
	}
}
