package config

import "testing"

func TestWizardValidators(t *testing.T) {
	for _, ok := range []string{"https://api.freepare.com", " http://127.0.0.1:8080 "} {
		if err := validateURL(ok); err != nil {
			t.Errorf("validateURL(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "api.freepare.com", "ftp://x", "https://"} {
		if validateURL(bad) == nil {
			t.Errorf("validateURL(%q) should fail", bad)
		}
	}
	for _, ok := range []string{"0", "10", " 3 "} {
		if err := validateRetries(ok); err != nil {
			t.Errorf("validateRetries(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"-1", "11", "two"} {
		if validateRetries(bad) == nil {
			t.Errorf("validateRetries(%q) should fail", bad)
		}
	}
}

func TestWizardNeedsPath(t *testing.T) {
	if _, err := NewWizard(DefaultConfig(), "").Run(); err == nil {
		t.Error("a wizard without a config path should refuse to run")
	}
}
