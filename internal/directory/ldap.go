// Package directory validates recipients against the company LDAP directory.
//
// The validation policy is deliberately fail-closed: any connection, bind, or
// search problem is logged and reported as "not a member" so a birthday
// message is never sent for a person we cannot verify. Do not loosen this
// into fail-open.
package directory

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
)

// Client checks uid existence under a search base.
type Client struct {
	// ServerURL is an ldap:// or ldaps:// URL.
	ServerURL string
	// SearchBase is the DN subtree searched for uids.
	SearchBase string
	// InsecureSkipVerify disables TLS certificate verification (lab setups).
	InsecureSkipVerify bool
	// Timeout bounds the whole dial-and-search round trip.
	Timeout time.Duration
}

// NewClient returns a Client with a default timeout.
func NewClient(serverURL, searchBase string, insecureSkipVerify bool) *Client {
	return &Client{
		ServerURL:          serverURL,
		SearchBase:         searchBase,
		InsecureSkipVerify: insecureSkipVerify,
		Timeout:            10 * time.Second,
	}
}

// IsValidMember reports whether uid exists in the directory. Every failure
// path returns false.
func (c *Client) IsValidMember(ctx context.Context, uid string) bool {
	if c == nil || c.ServerURL == "" || c.SearchBase == "" {
		log.Warn().Msg("directory not configured, treating member as invalid")
		return false
	}

	conn, err := ldap.DialURL(c.ServerURL, ldap.DialWithTLSConfig(&tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // operator opt-in for self-signed lab certs
	}))
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("ldap dial failed")
		return false
	}
	defer conn.Close()

	timeout := c.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	conn.SetTimeout(timeout)

	req := ldap.NewSearchRequest(
		c.SearchBase,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, int(timeout.Seconds()), false,
		fmt.Sprintf("(uid=%s)", ldap.EscapeFilter(uid)),
		[]string{"dn"},
		nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("ldap search failed")
		return false
	}

	found := len(res.Entries) > 0
	log.Debug().Str("uid", uid).Bool("found", found).Msg("ldap verification")
	return found
}
