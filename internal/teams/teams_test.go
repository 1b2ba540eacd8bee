package teams

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbuild-dev/xbuild/internal/runner"
)

type fakeExecutor struct {
	// outputs maps the -c name substring to the PEM payload returned
	// for that keychain query.
	outputs map[string]string
	errs    map[string]error
	cmds    []runner.Command
}

func (f *fakeExecutor) Run(cmd runner.Command) (runner.Output, error) {
	f.cmds = append(f.cmds, cmd)
	name := cmd.Args[len(cmd.Args)-1]
	if err := f.errs[name]; err != nil {
		return runner.Output{}, err
	}
	return runner.Output{Stdout: f.outputs[name]}, nil
}

func (f *fakeExecutor) RunInteractive(cmd runner.Command) error { return nil }

// selfSignedPEM builds a throwaway certificate with the given subject
// and validity window.
func selfSignedPEM(t *testing.T, subject pkix.Name, notBefore, notAfter time.Time) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      subject,
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func devSubject(team string) pkix.Name {
	return pkix.Name{
		CommonName:         "Apple Development: dev@example.com (ABCDE12345)",
		Organization:       []string{"Example Org"},
		OrganizationalUnit: []string{team},
	}
}

func TestFindValidTeam(t *testing.T) {
	now := time.Now()
	cert := selfSignedPEM(t, devSubject("TEAM123456"), now.Add(-time.Hour), now.Add(time.Hour))

	exec := &fakeExecutor{outputs: map[string]string{"Development:": cert}}
	teams := Find(exec)

	require.Len(t, teams, 1)
	assert.Equal(t, Team{
		CommonName:       "Apple Development: dev@example.com (ABCDE12345)",
		Organization:     "Example Org",
		OrganizationUnit: "TEAM123456",
	}, teams[0])

	// Both naming schemes are queried.
	require.Len(t, exec.cmds, 2)
	assert.Equal(t, "security", exec.cmds[0].Name)
}

func TestFindSkipsExpiredCertificates(t *testing.T) {
	now := time.Now()
	expired := selfSignedPEM(t, devSubject("OLD1234567"), now.Add(-2*time.Hour), now.Add(-time.Hour))

	exec := &fakeExecutor{outputs: map[string]string{"Development:": expired}}
	assert.Empty(t, Find(exec))
}

func TestFindSkipsIncompleteSubjects(t *testing.T) {
	now := time.Now()
	noOU := selfSignedPEM(t, pkix.Name{
		CommonName:   "Apple Development: dev@example.com",
		Organization: []string{"Example Org"},
	}, now.Add(-time.Hour), now.Add(time.Hour))

	exec := &fakeExecutor{outputs: map[string]string{"Development:": noOU}}
	assert.Empty(t, Find(exec))
}

func TestFindDeduplicatesAcrossSchemes(t *testing.T) {
	now := time.Now()
	cert := selfSignedPEM(t, devSubject("TEAM123456"), now.Add(-time.Hour), now.Add(time.Hour))

	exec := &fakeExecutor{outputs: map[string]string{
		"Development:": cert,
		"Developer:":   cert,
	}}
	// Same certificate under both schemes yields one team.
	assert.Len(t, Find(exec), 1)
}

func TestFindToleratesFailingScheme(t *testing.T) {
	now := time.Now()
	cert := selfSignedPEM(t, devSubject("TEAM123456"), now.Add(-time.Hour), now.Add(time.Hour))

	exec := &fakeExecutor{
		outputs: map[string]string{"Developer:": cert},
		errs:    map[string]error{"Development:": &runner.ExitError{Cmd: "security"}},
	}
	assert.Len(t, Find(exec), 1)
}
