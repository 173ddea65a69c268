// Package discovery browses mDNS/DNS-SD for network printers advertising the
// usual print services.
package discovery

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"

	"printerkit/internal/model"
)

var services = []string{"_ipp._tcp", "_ipps._tcp", "_printer._tcp", "_pdl-datastream._tcp"}

// Browse queries every known print service type and returns the discovered
// printers, deduplicated by URI. timeout bounds each per-service query.
func Browse(ctx context.Context, timeout time.Duration) ([]model.NetworkPrinter, error) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	seen := map[string]bool{}
	out := []model.NetworkPrinter{}
	for _, service := range services {
		if ctx.Err() != nil {
			break
		}
		for _, entry := range queryService(ctx, service, timeout) {
			p, ok := printerFromEntry(service, entry)
			if !ok {
				continue
			}
			key := strings.ToLower(p.URI)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, p)
		}
	}
	return out, ctx.Err()
}

func queryService(ctx context.Context, service string, timeout time.Duration) []*mdns.ServiceEntry {
	entries := make(chan *mdns.ServiceEntry, 64)
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	go func() {
		_ = mdns.Query(&mdns.QueryParam{
			Service: service,
			Domain:  "local",
			Timeout: timeout,
			Entries: entries,
		})
		close(entries)
	}()

	out := []*mdns.ServiceEntry{}
	for {
		select {
		case <-qctx.Done():
			return out
		case entry, ok := <-entries:
			if !ok {
				return out
			}
			if entry != nil {
				out = append(out, entry)
			}
		}
	}
}

func printerFromEntry(service string, entry *mdns.ServiceEntry) (model.NetworkPrinter, bool) {
	host := entry.Host
	if host == "" && entry.AddrV4 != nil {
		host = entry.AddrV4.String()
	} else if host == "" && entry.AddrV6 != nil {
		host = entry.AddrV6.String()
	}
	if host == "" || entry.Port == 0 {
		return model.NetworkPrinter{}, false
	}
	txt := parseTxtRecords(entry.InfoFields)
	return model.NetworkPrinter{
		URI:       serviceURI(service, host, entry.Port, txt),
		Info:      firstNonEmpty(txt["ty"], txt["note"], entry.Name),
		MakeModel: firstNonEmpty(txt["product"], txt["ty"]),
		Location:  strings.TrimSpace(txt["note"]),
	}, true
}

func serviceURI(service, host string, port int, txt map[string]string) string {
	switch {
	case strings.Contains(service, "_pdl-datastream"):
		return "socket://" + host + ":" + strconv.Itoa(port)
	case strings.Contains(service, "_printer"):
		queue := strings.TrimSpace(txt["rp"])
		if queue == "" {
			queue = "lp"
		}
		return "lpd://" + host + ":" + strconv.Itoa(port) + "/" + queue
	default:
		scheme := "ipp"
		if strings.Contains(service, "ipps") {
			scheme = "ipps"
		}
		resource := strings.TrimPrefix(txt["rp"], "/")
		if resource == "" {
			resource = "ipp/print"
		}
		return scheme + "://" + host + ":" + strconv.Itoa(port) + "/" + resource
	}
}

func parseTxtRecords(records []string) map[string]string {
	out := map[string]string{}
	for _, record := range records {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		if key, val, ok := strings.Cut(record, "="); ok {
			key = strings.TrimSpace(key)
			if key != "" {
				out[strings.ToLower(key)] = strings.TrimSpace(val)
			}
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
