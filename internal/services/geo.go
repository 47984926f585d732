package services

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoLocator resolves an IP to a country/city pair. Empty strings mean the
// lookup had no answer; callers must not fail on that.
type GeoLocator interface {
	Lookup(ip string) (country, city string)
}

// MaxMindLocator backs GeoLocator with a local GeoLite2/GeoIP2 database.
type MaxMindLocator struct {
	reader *geoip2.Reader
}

func NewMaxMindLocator(path string) (*MaxMindLocator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MaxMindLocator{reader: reader}, nil
}

func (l *MaxMindLocator) Lookup(ip string) (string, string) {
	if l == nil || l.reader == nil {
		return "", ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", ""
	}
	city, err := l.reader.City(parsed)
	if err != nil {
		return "", ""
	}
	return city.Country.IsoCode, city.City.Names["en"]
}

func (l *MaxMindLocator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}

// NoopLocator is used when no GeoIP database is configured.
type NoopLocator struct{}

func (NoopLocator) Lookup(string) (string, string) { return "", "" }
