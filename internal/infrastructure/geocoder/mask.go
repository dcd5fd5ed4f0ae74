package geocoder

import "regexp"

var secretParamRe = regexp.MustCompile(`(?i)([?&])(key|ak|token|access_token|username|email|tk)=([^&]+)`)

// maskURL hides credentials in query strings before logging, keeping the first
// four characters of each value.
func maskURL(rawURL string) string {
	return secretParamRe.ReplaceAllStringFunc(rawURL, func(m string) string {
		parts := secretParamRe.FindStringSubmatch(m)
		value := parts[3]
		if len(value) > 4 {
			value = value[:4]
		}
		return parts[1] + parts[2] + "=" + value + "****"
	})
}
