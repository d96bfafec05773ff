package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"cpmm/internal/fixedpoint"
)

func TestPoolSnapshotWireFormat(t *testing.T) {
	snap := PoolSnapshot{
		PoolID:              "sol-usdc",
		Version:             3,
		IsLaunched:          true,
		ConstantProductSqrt: fixedpoint.FromUint64(1),
		BaseQuoteRatio:      fixedpoint.New(2, 1<<63),
	}

	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, want := range []string{
		`"constant_product_sqrt":"0x10000000000000000"`,
		`"base_quote_ratio":"0x28000000000000000"`,
		`"version":3`,
	} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("encoded snapshot %s missing %s", b, want)
		}
	}
}

func TestPoolSnapshotDecode(t *testing.T) {
	doc := `{
		"pool_id": "sol-usdc",
		"version": 1,
		"is_launched": true,
		"initial_locked_liquidity": 100000,
		"constant_product_sqrt": "0x1e84800000000000000000",
		"base_quote_ratio": "0x40000000000000000",
		"base_liquidity": 4000000,
		"quote_liquidity": 1000000,
		"lp_tokens_supply": 2000000
	}`

	var snap PoolSnapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(snap.ConstantProductSqrt, fixedpoint.FromUint64(2_000_000)) {
		t.Fatalf("constant product sqrt = %s", snap.ConstantProductSqrt)
	}
	if !reflect.DeepEqual(snap.BaseQuoteRatio, fixedpoint.FromUint64(4)) {
		t.Fatalf("base quote ratio = %s", snap.BaseQuoteRatio)
	}

	tooWide := strings.Replace(doc, `"0x40000000000000000"`, `"0x100000000000000000000000000000000"`, 1)
	if err := json.Unmarshal([]byte(tooWide), &snap); err == nil {
		t.Fatalf("expected error for a ratio wider than 128 bits")
	}
}
