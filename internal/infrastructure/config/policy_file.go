package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"giftkeeper-server/internal/domain/ratelimit"
)

// policyFile レート制限ポリシーファイルの形式
//
//	policies:
//	  add:
//	    max_requests: 10
//	    window: 1m
type policyFile struct {
	Policies map[string]ratelimit.Policy `yaml:"policies"`
}

// LoadPolicyFile YAMLファイルから操作ごとのポリシーを読み込む
func LoadPolicyFile(path string) (map[ratelimit.Operation]ratelimit.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parsePolicies(data)
}

func parsePolicies(data []byte) (map[ratelimit.Operation]ratelimit.Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	known := make(map[ratelimit.Operation]struct{}, len(ratelimit.Operations))
	for _, op := range ratelimit.Operations {
		known[op] = struct{}{}
	}

	policies := make(map[ratelimit.Operation]ratelimit.Policy, len(f.Policies))
	for name, p := range f.Policies {
		op := ratelimit.Operation(name)
		if _, ok := known[op]; !ok {
			return nil, fmt.Errorf("unknown operation in policy file: %s", name)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid policy for %s: %w", name, err)
		}
		policies[op] = p
	}
	return policies, nil
}
