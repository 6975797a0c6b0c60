package vercel

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const deploymentsPath = "/v13/deployments"

var versioned = regexp.MustCompile(`/v\d+/deployments/?$`)

// DeploymentsURL returns the deployment-creation endpoint for a given API URL
// so for public vercel:
//   https://api.vercel.com would return https://api.vercel.com/v13/deployments
// and for a proxy mounted under a path:
//   https://proxy.my-domain/vercel/ returns https://proxy.my-domain/vercel/v13/deployments
// An URL that already names a deployments endpoint is kept as is.
// A non-empty teamID is added as the teamId query parameter.
func DeploymentsURL(apiURL, teamID string) (endpoint string, err error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if u == nil || err != nil {
		err = fmt.Errorf("cannot parse API URL %v", err)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		err = fmt.Errorf("API URL %q must be http or https", apiURL)
		return
	}
	if u.Host == "" {
		err = fmt.Errorf("API URL %q has no host", apiURL)
		return
	}
	if !versioned.MatchString(u.Path) {
		u.Path = strings.TrimRight(u.Path, "/") + deploymentsPath
	}
	if teamID != "" {
		q := u.Query()
		q.Set("teamId", teamID)
		u.RawQuery = q.Encode()
	}
	endpoint = u.String()
	return
}
