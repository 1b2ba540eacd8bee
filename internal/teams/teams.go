// Package teams discovers code-signing development teams from the
// certificates in the user's keychain.
package teams

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/xbuild-dev/xbuild/internal/runner"
)

// Team identifies one Apple development team extracted from a signing
// certificate. The organizational unit carries the team id used for
// code signing.
type Team struct {
	CommonName       string
	Organization     string
	OrganizationUnit string
}

// Find returns the development teams with a currently valid signing
// certificate in the keychain, sorted and deduplicated. Certificates
// are searched under both the current ("Apple Development:") and the
// legacy ("iPhone Developer:") naming schemes; a failing keychain query
// for one scheme only drops that scheme's results.
func Find(exec runner.Executor) []Team {
	var pemData []byte
	for _, nameSubstr := range []string{"Development:", "Developer:"} {
		data, err := certificatePEMs(exec, nameSubstr)
		if err != nil {
			log.Debug().Err(err).Str("name", nameSubstr).Msg("keychain query failed")
			continue
		}
		pemData = append(pemData, data...)
	}

	var teams []Team
	for block, rest := pem.Decode(pemData); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != "CERTIFICATE" {
			continue
		}
		if team, ok := teamFromCertificate(block.Bytes); ok {
			teams = append(teams, team)
		}
	}

	teams = lo.Uniq(teams)
	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.CommonName != b.CommonName {
			return a.CommonName < b.CommonName
		}
		if a.Organization != b.Organization {
			return a.Organization < b.Organization
		}
		return a.OrganizationUnit < b.OrganizationUnit
	})
	return teams
}

func certificatePEMs(exec runner.Executor, nameSubstr string) ([]byte, error) {
	out, err := exec.Run(runner.Command{
		Name: "security",
		Args: []string{"find-certificate", "-p", "-a", "-c", nameSubstr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query keychain for %q certificates: %w", nameSubstr, err)
	}
	return []byte(out.Stdout), nil
}

// teamFromCertificate extracts team identity from one DER certificate.
// Expired or not-yet-valid certificates and certificates missing any of
// the three subject fields are skipped.
func teamFromCertificate(der []byte) (Team, bool) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		log.Debug().Err(err).Msg("skipping unparsable certificate")
		return Team{}, false
	}

	now := time.Now()
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return Team{}, false
	}

	subj := cert.Subject
	if subj.CommonName == "" || len(subj.Organization) == 0 || len(subj.OrganizationalUnit) == 0 {
		return Team{}, false
	}

	return Team{
		CommonName:       subj.CommonName,
		Organization:     subj.Organization[0],
		OrganizationUnit: subj.OrganizationalUnit[0],
	}, true
}
