package providers

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// CelesTrakProvider fetches two-line element sets from CelesTrak.
type CelesTrakProvider struct {
	name    string
	baseURL string
	group   string
	limit   int
	up      *upstream
}

func NewCelesTrakProvider(client *http.Client, baseURL, group string, limit int) *CelesTrakProvider {
	if baseURL == "" {
		baseURL = "https://celestrak.org/NORAD/elements/gp.php"
	}
	if group == "" {
		group = "active"
	}
	return &CelesTrakProvider{
		name:    "celestrak",
		baseURL: baseURL,
		group:   group,
		limit:   limit,
		up:      newUpstream("celestrak", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
	}
}

func (p *CelesTrakProvider) Name() string {
	return p.name
}

const maxTLEBytes = 16 << 20

func (p *CelesTrakProvider) Fetch(ctx context.Context) ([]worldview.SatelliteRecord, error) {
	values := url.Values{}
	values.Set("GROUP", p.group)
	values.Set("FORMAT", "tle")

	body, _, err := p.up.getBody(ctx, p.baseURL+"?"+values.Encode(), nil, maxTLEBytes)
	if err != nil {
		return nil, err
	}
	return worldview.Truncate(ParseTLE(body), p.limit), nil
}

// ParseTLE reads three-line TLE text (name, line 1, line 2). Sets with a bad
// line prefix, length or checksum are skipped.
func ParseTLE(data []byte) []worldview.SatelliteRecord {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \r\t")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	var out []worldview.SatelliteRecord
	for i := 0; i+2 < len(lines); {
		name, l1, l2 := strings.TrimSpace(lines[i]), lines[i+1], lines[i+2]
		if !validTLELine(l1, '1') || !validTLELine(l2, '2') {
			// Resynchronize on the next line.
			i++
			continue
		}
		norad := strings.TrimSpace(l1[2:7])
		if norad != strings.TrimSpace(l2[2:7]) {
			i++
			continue
		}
		name = strings.TrimPrefix(name, "0 ")
		out = append(out, worldview.SatelliteRecord{
			Name:    name,
			NoradID: norad,
			Line1:   l1,
			Line2:   l2,
		})
		i += 3
	}
	return out
}

func validTLELine(line string, num byte) bool {
	if len(line) != 69 || line[0] != num || line[1] != ' ' {
		return false
	}
	want := line[68]
	if want < '0' || want > '9' {
		return false
	}
	return tleChecksum(line) == int(want-'0')
}

// tleChecksum is the modulo-10 sum of the first 68 characters, where digits
// count their value, '-' counts one and everything else zero.
func tleChecksum(line string) int {
	sum := 0
	for i := 0; i < 68; i++ {
		c := line[i]
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}
