package medfund

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave/weavetest"
)

func TestGenInitOptions(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	raw, err := GenInitOptions([]string{"MED", addr.String()})
	if err != nil {
		t.Fatalf("cannot generate genesis options: %s", err)
	}
	var opts map[string]json.RawMessage
	if err := json.Unmarshal(raw, &opts); err != nil {
		t.Fatalf("invalid genesis JSON: %s", err)
	}
	for _, section := range []string{"cash", "currencies", "verifiers", "conf", "initialize_schema"} {
		if _, ok := opts[section]; !ok {
			t.Errorf("missing genesis section %q", section)
		}
	}
}

func TestGenInitOptionsRejectsBadTicker(t *testing.T) {
	if _, err := GenInitOptions([]string{"bad ticker"}); err == nil {
		t.Fatal("an invalid ticker must be rejected")
	}
}
