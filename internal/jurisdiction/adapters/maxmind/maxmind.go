// Package maxmind resolves client addresses to countries from a local
// MaxMind GeoIP2/GeoLite2 country or city database.
package maxmind

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"

	"github.com/oschwald/maxminddb-golang"

	"compliance-panel/internal/jurisdiction/models"
)

var ErrInvalidDatabase = errors.New("invalid geoip database file")

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

type lookupFunc func(ip net.IP, result any) error

// Locator is a NetworkLocator backed by an mmdb file.
type Locator struct {
	lookup lookupFunc
	closer func() error
}

// Open memory-maps the database at path.
func Open(path string) (*Locator, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) || errors.As(err, &maxminddb.InvalidDatabaseError{}) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDatabase, path)
		}
		return nil, fmt.Errorf("opening geoip database: %w", err)
	}
	return &Locator{lookup: reader.Lookup, closer: reader.Close}, nil
}

// CountryForIP returns the country of ip. Private, loopback and unspecified
// addresses are never in the database and report ErrCountryNotFound.
func (l *Locator) CountryForIP(ctx context.Context, ip string) (models.CountryCode, error) {
	if err := ctx.Err(); err != nil {
		return models.Unknown, err
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return models.Unknown, fmt.Errorf("%w: %q", models.ErrInvalidAddress, ip)
	}
	if parsed.IsPrivate() || parsed.IsLoopback() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return models.Unknown, models.ErrCountryNotFound
	}

	var rec countryRecord
	if err := l.lookup(parsed, &rec); err != nil {
		return models.Unknown, fmt.Errorf("reading geolocation for ip: %w", err)
	}
	iso := rec.Country.ISOCode
	if iso == "" {
		iso = rec.RegisteredCountry.ISOCode
	}
	country := models.NormalizeCountry(iso)
	if country.IsUnknown() {
		return models.Unknown, models.ErrCountryNotFound
	}
	return country, nil
}

func (l *Locator) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}
