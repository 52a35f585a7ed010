package constants_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kraenzle-ritter/resources/pkg/constants"
)

// Example_timeouts demonstrates building a bounded HTTP client.
func Example_timeouts() {
	dialer := &net.Dialer{Timeout: constants.DefaultConnectTimeout}
	client := &http.Client{
		Timeout:   constants.DefaultTimeout,
		Transport: &http.Transport{DialContext: dialer.DialContext},
	}
	fmt.Printf("total: %v, connect: %v\n", client.Timeout, dialer.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), constants.CommandTimeout)
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	fmt.Println("deadline:", hasDeadline)

	// Output:
	// total: 10s, connect: 5s
	// deadline: true
}

// Example_endpoints shows how the Wikipedia endpoint is localized.
func Example_endpoints() {
	endpoint := strings.ReplaceAll(constants.WikipediaAPI, "{LOCALE}", "fr")
	fmt.Println(endpoint)
	fmt.Println(constants.WikidataPage + "Q42")

	// Output:
	// https://fr.wikipedia.org/w/api.php
	// https://www.wikidata.org/wiki/Q42
}
