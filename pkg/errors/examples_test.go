package errors_test

import (
	"fmt"

	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewNotFoundError("resource", "3f2a")

	if errors.IsNotFound(err) {
		fmt.Println("Resource not found")
	}

	// Output: Resource not found
}

// Example_aPIError demonstrates classifying upstream failures.
func Example_aPIError() {
	err := &errors.APIError{
		System:     "wikidata",
		Endpoint:   "https://www.wikidata.org/w/api.php",
		StatusCode: 503,
		Message:    "Service Unavailable",
	}

	switch {
	case errors.IsRateLimited(err):
		fmt.Println("Rate limited - slow down")
	case errors.IsProviderUnavailable(err):
		fmt.Println("Upstream unavailable - treat as no data")
	}

	// Output: Upstream unavailable - treat as no data
}
