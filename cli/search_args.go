package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// parseSearchArgs parses `search` arguments into query params and page number.
//
// Supported flags:
// - --path <path> / --path=<path>
//
// Remaining words form the keyword. The last argument may be a page number.
func parseSearchArgs(args []string) (page int, values url.Values, err error) {
	page = 1
	values = url.Values{}

	if len(args) == 0 {
		return 0, nil, fmt.Errorf("missing args")
	}

	// Optional trailing page number.
	if p, parseErr := strconv.Atoi(args[len(args)-1]); parseErr == nil {
		page = p
		args = args[:len(args)-1]
	}
	if page < 1 {
		page = 1
	}

	var keywordParts []string
	for i := 0; i < len(args); i++ {
		token := args[i]

		// --flag=value
		if strings.HasPrefix(token, "--") && strings.Contains(token, "=") {
			parts := strings.SplitN(token, "=", 2)
			if err := applySearchFlag(values, parts[0], parts[1]); err != nil {
				return 0, nil, err
			}
			continue
		}

		// --flag value
		if strings.HasPrefix(token, "--") {
			if i+1 >= len(args) {
				return 0, nil, fmt.Errorf("missing value for %s", token)
			}
			if err := applySearchFlag(values, token, args[i+1]); err != nil {
				return 0, nil, err
			}
			i++
			continue
		}

		keywordParts = append(keywordParts, token)
	}

	if keyword := strings.TrimSpace(strings.Join(keywordParts, " ")); keyword != "" {
		values.Set("q", keyword)
	}

	if values.Get("q") == "" && values.Get("path") == "" {
		return 0, nil, fmt.Errorf("missing search keyword or filters")
	}

	return page, values, nil
}

func applySearchFlag(values url.Values, name, value string) error {
	switch name {
	case "--path":
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("invalid --path: empty")
		}
		values.Set("path", value)
		return nil
	default:
		return fmt.Errorf("unknown flag: %s", name)
	}
}
