// Package tracker resolves ticket statuses from a Jira server.
package tracker

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/dghubble/oauth1"
	"github.com/loamlabs/branchwatch/internal/model"
	"github.com/loamlabs/branchwatch/internal/scan"
)

// Credentials holds the OAuth1 material for a Jira application link.
type Credentials struct {
	AccessToken string
	TokenSecret string
	ConsumerKey string
	PrivateKey  []byte
}

// CredentialsFromEnv assembles Jira credentials from the environment.
// Tokens cannot be stored in config files. The private key is read from
// JIRA_PRIVATE_KEY directly or from the file named by JIRA_PRIVATE_KEY_FILE.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		AccessToken: os.Getenv("JIRA_ACCESS_TOKEN"),
		TokenSecret: os.Getenv("JIRA_ACCESS_TOKEN_SECRET"),
		ConsumerKey: os.Getenv("JIRA_CONSUMER_KEY"),
	}

	var missing []string
	if creds.AccessToken == "" {
		missing = append(missing, "JIRA_ACCESS_TOKEN")
	}
	if creds.TokenSecret == "" {
		missing = append(missing, "JIRA_ACCESS_TOKEN_SECRET")
	}
	if creds.ConsumerKey == "" {
		missing = append(missing, "JIRA_CONSUMER_KEY")
	}

	switch {
	case os.Getenv("JIRA_PRIVATE_KEY") != "":
		creds.PrivateKey = []byte(os.Getenv("JIRA_PRIVATE_KEY"))
	case os.Getenv("JIRA_PRIVATE_KEY_FILE") != "":
		data, err := os.ReadFile(os.Getenv("JIRA_PRIVATE_KEY_FILE"))
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to read JIRA_PRIVATE_KEY_FILE: %w", err)
		}
		creds.PrivateKey = data
	default:
		missing = append(missing, "JIRA_PRIVATE_KEY")
	}

	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("missing Jira credentials: set %s", strings.Join(missing, ", "))
	}

	return creds, nil
}

// Client looks up issues on a Jira server.
type Client struct {
	jira *jira.Client
}

// Ensure Client implements the scan.StatusResolver interface.
var _ scan.StatusResolver = (*Client)(nil)

// NewClient creates a Jira client authenticated through an OAuth1
// application link with RSA signing.
func NewClient(ctx context.Context, baseURL string, creds Credentials) (*Client, error) {
	key, err := parsePrivateKey(creds.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Jira private key: %w", err)
	}

	config := oauth1.Config{
		ConsumerKey: creds.ConsumerKey,
		Signer:      &oauth1.RSASigner{PrivateKey: key},
	}
	token := oauth1.NewToken(creds.AccessToken, creds.TokenSecret)
	httpClient := config.Client(ctx, token)

	jc, err := jira.NewClient(httpClient, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}

	return &Client{jira: jc}, nil
}

// Self verifies the credentials by fetching the authenticated user.
func (c *Client) Self(ctx context.Context) (string, error) {
	user, _, err := c.jira.User.GetSelfWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to verify Jira credentials: %w", err)
	}
	return user.DisplayName, nil
}

// ResolveStatus returns the workflow status name of a ticket.
func (c *Client) ResolveStatus(ctx context.Context, ticket string) (string, error) {
	// Only the status field is needed
	issue, resp, err := c.jira.Issue.GetWithContext(ctx, ticket, &jira.GetQueryOptions{Fields: "status"})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("ticket %s: %w", ticket, model.ErrNotFound)
		}
		return "", fmt.Errorf("failed to look up ticket %s: %w", ticket, err)
	}

	if issue.Fields == nil || issue.Fields.Status == nil {
		return "", fmt.Errorf("ticket %s has no status", ticket)
	}
	return issue.Fields.Status.Name, nil
}

// parsePrivateKey reads an RSA private key in PKCS#1 or PKCS#8 PEM form.
func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM data found")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return key, nil
}
