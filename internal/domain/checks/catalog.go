package checks

// DefaultCatalog is used when the config does not list any checks.
func DefaultCatalog() []CheckDefinition {
	return []CheckDefinition{
		{ID: "sql-injection", Name: "SQL Injection Test", Description: "Tests for SQL injection vulnerabilities in input fields"},
		{ID: "xss", Name: "Cross-Site Scripting (XSS) Test", Description: "Tests for XSS vulnerabilities in rendered output"},
		{ID: "auth-bypass", Name: "Authentication Bypass Test", Description: "Tests for authentication weaknesses"},
		{ID: "csrf", Name: "CSRF Protection Test", Description: "Verifies CSRF token validation"},
		{ID: "security-headers", Name: "Security Headers Test", Description: "Checks implementation of security headers"},
	}
}

func DefaultFeatures() []Feature {
	return []Feature{
		{Title: "Content Security Policy", Description: "Restricts sources of executable scripts to prevent XSS attacks", Implemented: true},
		{Title: "HTTP Security Headers", Description: "Implements X-Frame-Options, X-Content-Type-Options, and other security headers", Implemented: true},
		{Title: "JWT Authentication", Description: "Secure token-based authentication with proper validation", Implemented: true},
		{Title: "CSRF Protection", Description: "Anti-CSRF tokens for all state-changing requests", Implemented: true},
		{Title: "Input Sanitization", Description: "Sanitizes all user inputs to prevent injection attacks", Implemented: true},
		{Title: "Secure Cookies", Description: "HttpOnly, Secure, and SameSite cookie attributes", Implemented: true},
		{Title: "Rate Limiting", Description: "Limits request rates to prevent brute force attacks", Implemented: false},
		{Title: "Two-Factor Authentication", Description: "Additional security layer with time-based OTP", Implemented: false},
	}
}
