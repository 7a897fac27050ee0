package probe

import (
	"context"
	"net"
	"testing"
)

type fakeResolver struct {
	addrs   []net.IPAddr
	addrErr error
	cname   string
	ns      []*net.NS
}

func (f *fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	return f.addrs, f.addrErr
}

func (f *fakeResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	if f.cname == "" {
		return host + ".", nil
	}
	return f.cname, nil
}

func (f *fakeResolver) LookupNS(ctx context.Context, name string) ([]*net.NS, error) {
	if len(f.ns) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
	}
	return f.ns, nil
}

func TestDNSDiagnoser_Classes(t *testing.T) {
	notFound := &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}
	timeout := &net.DNSError{Err: "i/o timeout", Name: "x", IsTimeout: true}

	cases := []struct {
		name string
		url  string
		r    *fakeResolver
		want string
	}{
		{"resolves", "https://example.com/health", &fakeResolver{addrs: []net.IPAddr{{IP: net.ParseIP("192.0.2.1")}}}, DNSResolves},
		{"nxdomain", "https://nope.example", &fakeResolver{addrErr: notFound}, DNSNXDomain},
		{"zone without A", "https://bare.example", &fakeResolver{addrErr: notFound, ns: []*net.NS{{Host: "ns1.example."}}}, DNSNoARecord},
		{"timeout", "https://slow.example", &fakeResolver{addrErr: timeout}, DNSServfail},
		{"empty", "", &fakeResolver{}, DNSInvalidName},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := &DNSDiagnoser{Resolver: c.r}
			got := d.DiagnoseURL(context.Background(), c.url)
			if got.Class != c.want {
				t.Fatalf("class=%s want %s (%+v)", got.Class, c.want, got)
			}
		})
	}
}

func TestDNSDiagnoser_CNAME(t *testing.T) {
	d := &DNSDiagnoser{Resolver: &fakeResolver{
		addrs: []net.IPAddr{{IP: net.ParseIP("192.0.2.1")}},
		cname: "edge.cdn.example.",
	}}
	got := d.Diagnose(context.Background(), "www.example.com")
	if got.CNAME != "edge.cdn.example" {
		t.Fatalf("cname=%q", got.CNAME)
	}
	if len(got.IPs) != 1 || got.IPs[0] != "192.0.2.1" {
		t.Fatalf("ips=%v", got.IPs)
	}
}
