package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeHostTXT creates TXT records for host discovery.
func EncodeHostTXT(info *HostInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyHostID] = info.HostID

	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	txt[TXTKeyUnitCount] = strconv.Itoa(info.UnitCount)

	return txt
}

// DecodeHostTXT parses TXT records from host discovery.
func DecodeHostTXT(txt TXTRecordMap) (*HostInfo, error) {
	info := &HostInfo{}

	var ok bool
	info.HostID, ok = txt[TXTKeyHostID]
	if !ok || info.HostID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyHostID)
	}

	info.Version = txt[TXTKeyVersion]

	if countStr, ok := txt[TXTKeyUnitCount]; ok {
		count, err := strconv.Atoi(countStr)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXT, TXTKeyUnitCount, countStr)
		}
		info.UnitCount = count
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	strs := make([]string, 0, len(txt))
	for k, v := range txt {
		strs = append(strs, k+"="+v)
	}
	return strs
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
// Entries without '=' are ignored.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		if k, v, found := strings.Cut(s, "="); found && k != "" {
			txt[k] = v
		}
	}
	return txt
}
