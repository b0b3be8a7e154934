package harbor

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// sensitiveHeaders are replaced before request headers are logged
var sensitiveHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
}

// loggingTransport logs every round trip at debug level. Request headers
// are added at trace level with credentials redacted.
type loggingTransport struct {
	next   http.RoundTripper
	logger *logrus.Logger
}

func newLoggingTransport(next http.RoundTripper, logger *logrus.Logger) *loggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	fields := logrus.Fields{
		"method":   req.Method,
		"endpoint": req.URL.String(),
		"latency":  time.Since(start).String(),
	}
	if t.logger.IsLevelEnabled(logrus.TraceLevel) {
		fields["request_headers"] = redactHeaders(req.Header)
	}

	if err != nil {
		t.logger.WithFields(fields).WithError(err).Debug("Request failed")
		return nil, err
	}

	fields["status"] = resp.StatusCode
	t.logger.WithFields(fields).Debug("Request processed")
	return resp, nil
}

func redactHeaders(header http.Header) map[string][]string {
	redacted := make(map[string][]string, len(header))
	for k, v := range header {
		if sensitiveHeaders[k] {
			redacted[k] = []string{"[REDACTED]"}
			continue
		}
		redacted[k] = v
	}
	return redacted
}
