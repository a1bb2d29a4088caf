package health

import "github.com/kailas-cloud/wordser/internal/domain"

// Checker checks one upstream component.
type Checker = domain.HealthChecker
