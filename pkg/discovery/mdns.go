package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface.
	// Empty means all interfaces.
	Interface string

	// TTL for the mDNS records (optional).
	TTL time.Duration
}

// Advertiser announces a module host via mDNS.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates a new mDNS advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// getInterfaces returns the interfaces to advertise on, nil for all.
func (a *Advertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts announcing the host. A second call replaces the
// previous announcement.
func (a *Advertiser) Advertise(info *HostInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instanceName := info.HostID
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	txtStrings := TXTRecordsToStrings(EncodeHostTXT(info))

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		int(info.Port),
		txtStrings,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register host service: %w", err)
	}

	a.server = server
	return nil
}

// Update replaces the TXT records of the running announcement, used
// when the unit count changes.
func (a *Advertiser) Update(info *HostInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(TXTRecordsToStrings(EncodeHostTXT(info)))
	return nil
}

// Stop withdraws the announcement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// BrowserConfig configures a Browser.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	// Empty means all interfaces.
	Interface string
}

// Browser searches for module hosts via mDNS.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a new mDNS browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

func (b *Browser) browserOptions() []zeroconf.ClientOption {
	if b.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(b.config.Interface)
	if err != nil {
		return nil
	}
	return []zeroconf.ClientOption{zeroconf.SelectIfaces([]net.Interface{*iface})}
}

// Browse streams discovered hosts until the context ends. Entries for
// the same instance name are aggregated; each host is emitted once
// with addresses merged across interfaces.
func (b *Browser) Browse(ctx context.Context) (<-chan *HostService, error) {
	out := make(chan *HostService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		services := make(map[string]*HostService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToHostService(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(services, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindHosts browses for the given duration and returns everything
// found.
func (b *Browser) FindHosts(ctx context.Context, timeout time.Duration) ([]*HostService, error) {
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch, err := b.Browse(browseCtx)
	if err != nil {
		return nil, err
	}

	var hosts []*HostService
	for svc := range ch {
		hosts = append(hosts, svc)
	}
	return hosts, nil
}

// FindHost browses until a host with the given ID appears.
func (b *Browser) FindHost(ctx context.Context, hostID string, timeout time.Duration) (*HostService, error) {
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch, err := b.Browse(browseCtx)
	if err != nil {
		return nil, err
	}

	for svc := range ch {
		if svc.HostID == hostID {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("host %q not found within %s", hostID, timeout)
}

// entryToHostService converts a zeroconf entry, dropping entries with
// unusable TXT records.
func entryToHostService(entry *zeroconf.ServiceEntry) *HostService {
	info, err := DecodeHostTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	var addrs []net.IP
	addrs = append(addrs, entry.AddrIPv4...)
	addrs = append(addrs, entry.AddrIPv6...)

	return &HostService{
		InstanceName: entry.Instance,
		HostID:       info.HostID,
		Version:      info.Version,
		UnitCount:    info.UnitCount,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		DiscoveredAt: time.Now(),
	}
}

// mergeAddresses combines address lists without duplicates.
func mergeAddresses(existing, incoming []net.IP) []net.IP {
	for _, addr := range incoming {
		seen := false
		for _, have := range existing {
			if have.Equal(addr) {
				seen = true
				break
			}
		}
		if !seen {
			existing = append(existing, addr)
		}
	}
	return existing
}
