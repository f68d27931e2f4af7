package utils

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/prowheel/wheellab/log"
)

// WaitForTCP dials addr until it accepts a connection, the timeout is reached
// or ctx is done.
func WaitForTCP(ctx context.Context, addr string, timeout time.Duration) error {
	timeoutReached := time.Now().Add(timeout)
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.String("timeout", timeout.String()))
	var d net.Dialer
	for time.Now().Before(timeoutReached) {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()

			log.Debug("tcp connection successful",
				log.String("addr", addr),
				log.String("duration", time.Since(start).String()))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return fmt.Errorf("%s could not be reached after %v", addr, timeout)
}

// ExtractFromDBURL returns host:port of a postgres connection string.
// The port defaults to 5432.
func ExtractFromDBURL(url string) string {
	param := resolveRegex(
		"^(postgresql|postgres)://(.*@)?(?P<addr>(?P<host>[^/:?]*)(:(?P<port>\\d+))?)(/.*)?$", url)
	return hostPort(param, "5432")
}

// ExtractFromNatsURL returns host:port of a nats server URL.
// The port defaults to 4222.
func ExtractFromNatsURL(url string) string {
	param := resolveRegex(
		"^(nats|tls)://(.*@)?(?P<addr>(?P<host>[^/:?]*)(:(?P<port>\\d+))?)/?$", url)
	return hostPort(param, "4222")
}

func hostPort(param map[string]string, defaultPort string) string {
	if param["host"] == "" {
		return ""
	}
	if port := param["port"]; port != "" {
		return param["addr"] // if port is found, the addr contains our wanted value
	}
	return fmt.Sprintf("%s:%s", param["addr"], defaultPort)
}

func resolveRegex(regEx, url string) (paramsMap map[string]string) {
	compRegEx := regexp.MustCompile(regEx)
	match := compRegEx.FindStringSubmatch(url)

	paramsMap = make(map[string]string)
	for i, name := range compRegEx.SubexpNames() {
		if i > 0 && i < len(match) && name != "" {
			paramsMap[name] = match[i]
		}
	}
	return paramsMap
}
