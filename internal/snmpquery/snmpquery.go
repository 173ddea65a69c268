// Package snmpquery reads marker-supply levels from a network printer over
// SNMP (Printer MIB, prtMarkerSupplies).
package snmpquery

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"printerkit/internal/model"
)

const (
	oidSupplyDesc  = ".1.3.6.1.2.1.43.11.1.1.6.1"
	oidSupplyMax   = ".1.3.6.1.2.1.43.11.1.1.8.1"
	oidSupplyLevel = ".1.3.6.1.2.1.43.11.1.1.9.1"
	oidSysName     = ".1.3.6.1.2.1.1.5.0"
)

type Querier struct {
	Community string
	Timeout   time.Duration
}

// Supplies walks the marker-supply table of the device behind target, which
// may be a bare host, host:port, or any URI whose host is the device.
// State is "ok", "low" (lowest supply at or under 10%), "empty", or
// "unknown" when the device reports no supply table.
func (q Querier) Supplies(ctx context.Context, target string) (model.SupplyStatus, error) {
	host, port := hostPort(target)
	if host == "" {
		return model.SupplyStatus{State: "unknown"}, nil
	}

	params := q.newParams(host, port)
	if err := params.Connect(); err != nil {
		return model.SupplyStatus{State: "unknown"}, err
	}
	defer params.Conn.Close()

	details := map[string]string{}
	if name := sysName(params); name != "" {
		details["sysName"] = name
	}

	desc := map[string]string{}
	maxCap := map[string]int{}
	level := map[string]int{}
	_ = params.BulkWalk(oidSupplyDesc, func(pdu gosnmp.SnmpPDU) error {
		if idx := oidIndex(pdu.Name, oidSupplyDesc); idx != "" {
			if s, ok := toString(pdu.Value); ok {
				desc[idx] = s
			}
		}
		return nil
	})
	_ = params.BulkWalk(oidSupplyMax, func(pdu gosnmp.SnmpPDU) error {
		if idx := oidIndex(pdu.Name, oidSupplyMax); idx != "" {
			if n, ok := toInt(pdu.Value); ok {
				maxCap[idx] = n
			}
		}
		return nil
	})
	_ = params.BulkWalk(oidSupplyLevel, func(pdu gosnmp.SnmpPDU) error {
		if idx := oidIndex(pdu.Name, oidSupplyLevel); idx != "" {
			if n, ok := toInt(pdu.Value); ok {
				level[idx] = n
			}
		}
		return nil
	})

	state := "unknown"
	lowest := 101
	for idx, lvl := range level {
		key := "supply." + idx
		if d := desc[idx]; d != "" {
			details[key+".desc"] = d
		}
		details[key+".level"] = strconv.Itoa(lvl)
		if max, ok := maxCap[idx]; ok {
			details[key+".max"] = strconv.Itoa(max)
			if max > 0 && lvl >= 0 {
				percent := (lvl * 100) / max
				details[key+".percent"] = strconv.Itoa(percent)
				if percent < lowest {
					lowest = percent
				}
			}
		}
	}
	if len(level) > 0 {
		state = "ok"
		if lowest >= 0 && lowest <= 10 {
			state = "low"
		}
		if lowest == 0 {
			state = "empty"
		}
	}
	return model.SupplyStatus{State: state, Details: details}, nil
}

func (q Querier) newParams(host, port string) *gosnmp.GoSNMP {
	community := q.Community
	if community == "" {
		community = "public"
	}
	timeout := q.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	params := &gosnmp.GoSNMP{
		Target:    host,
		Port:      161,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   timeout,
		Retries:   1,
	}
	if port != "" && port != "161" {
		if p, err := strconv.Atoi(port); err == nil {
			params.Port = uint16(p)
		}
	}
	return params
}

func hostPort(target string) (string, string) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", ""
	}
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
			return u.Hostname(), u.Port()
		}
	}
	if host, port, ok := strings.Cut(target, ":"); ok && host != "" {
		return host, port
	}
	return target, ""
}

func sysName(params *gosnmp.GoSNMP) string {
	result, err := params.Get([]string{oidSysName})
	if err != nil {
		return ""
	}
	for _, v := range result.Variables {
		if val, ok := toString(v.Value); ok {
			return val
		}
	}
	return ""
}

// toString accepts both forms gosnmp decodes OctetString values into.
func toString(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func oidIndex(name, base string) string {
	if strings.HasPrefix(name, base+".") {
		return strings.TrimPrefix(name, base+".")
	}
	if strings.HasPrefix(name, base) {
		return strings.TrimPrefix(name, base)
	}
	return ""
}

func toInt(val any) (int, bool) {
	if val == nil {
		return 0, false
	}
	if bi := gosnmp.ToBigInt(val); bi != nil {
		return int(bi.Int64()), true
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint32:
		return int(v), true
	default:
		return 0, false
	}
}
