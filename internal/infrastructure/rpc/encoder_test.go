package rpc

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		method string
		params []Param
		want   []string
	}{
		{
			name:   "no params",
			method: "getinfo",
			want:   []string{"getinfo", "chain1"},
		},
		{
			name:   "positional strings",
			method: "verifypermission",
			params: []Param{String("1Address"), String("admin")},
			want:   []string{"verifypermission", "1Address", "admin", "chain1"},
		},
		{
			name:   "booleans are lowercase",
			method: "getblockchainparams",
			params: []Param{Bool(true), Bool(false)},
			want:   []string{"getblockchainparams", "true", "false", "chain1"},
		},
		{
			name:   "trailing absent params are omitted",
			method: "listpermissions",
			params: []Param{String("admin"), Absent(), Absent()},
			want:   []string{"listpermissions", "admin", "chain1"},
		},
		{
			name:   "absent before present becomes placeholder",
			method: "listpermissions",
			params: []Param{Absent(), Absent(), Bool(true)},
			want:   []string{"listpermissions", "", "", "true", "chain1"},
		},
		{
			name:   "only absent params",
			method: "getnewaddress",
			params: []Param{Absent(), Absent()},
			want:   []string{"getnewaddress", "chain1"},
		},
		{
			name:   "integers and floats",
			method: "listblocks",
			params: []Param{Int(-5), Float(0.1), Float(2)},
			want:   []string{"listblocks", "-5", "0.1", "2", "chain1"},
		},
		{
			name:   "decimal amount is exact",
			method: "sendtoaddress",
			params: []Param{String("1Dest"), Decimal(sdkmath.LegacyMustNewDecFromStr("12.500"))},
			want:   []string{"sendtoaddress", "1Dest", "12.5", "chain1"},
		},
		{
			name:   "whole decimal has no fraction",
			method: "sendtoaddress",
			params: []Param{String("1Dest"), Decimal(sdkmath.LegacyNewDec(10))},
			want:   []string{"sendtoaddress", "1Dest", "10", "chain1"},
		},
		{
			name:   "object is canonical JSON",
			method: "create",
			params: []Param{String("stream"), String("s1"), Object(map[string]any{"b": 2, "a": "x"})},
			want:   []string{"create", "stream", "s1", `{"a":"x","b":2}`, "chain1"},
		},
		{
			name:   "array of mixed params",
			method: "publish",
			params: []Param{Array(String("k1"), Int(3), Bool(false), Float(1.25))},
			want:   []string{"publish", `["k1",3,false,1.25]`, "chain1"},
		},
		{
			name:   "strings shorthand",
			method: "subscribe",
			params: []Param{Strings("s1", "s2")},
			want:   []string{"subscribe", `["s1","s2"]`, "chain1"},
		},
		{
			name:   "message spaces use sentinel",
			method: "verifymessage",
			params: []Param{String("1Addr"), String("sig"), Message("hello big world")},
			want:   []string{"verifymessage", "1Addr", "sig", "hello_big_world", "chain1"},
		},
		{
			name:   "plain string keeps spaces",
			method: "setaccount",
			params: []Param{String("1Addr"), String("my label")},
			want:   []string{"setaccount", "1Addr", "my label", "chain1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.method, "chain1", tt.params...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_BooleanTokens(t *testing.T) {
	for _, v := range []bool{true, false} {
		argv, err := Encode("m", "c", Bool(v))
		require.NoError(t, err)
		assert.Contains(t, []string{"true", "false"}, argv[1])
	}
}

func TestEncoder_CustomSentinel(t *testing.T) {
	enc := Encoder{SpaceSentinel: "~"}
	argv, err := enc.Encode("signmessage", "chain1", String("1Addr"), Message("a b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"signmessage", "1Addr", "a~b", "chain1"}, argv)

	argv, err = Encoder{}.Encode("signmessage", "chain1", Message("a b"))
	require.NoError(t, err)
	assert.Equal(t, "a_b", argv[1])
}

func TestEncode_Faults(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		params []Param
	}{
		{name: "empty method", method: "", target: "chain1"},
		{name: "empty target", method: "getinfo", target: ""},
		{name: "NaN float", method: "m", target: "c", params: []Param{Float(math.NaN())}},
		{name: "infinite float in array", method: "m", target: "c", params: []Param{Array(Float(math.Inf(1)))}},
		{name: "nil decimal", method: "m", target: "c", params: []Param{Decimal(sdkmath.LegacyDec{})}},
		{name: "unserializable object", method: "m", target: "c", params: []Param{Object(make(chan int))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := Encode(tt.method, tt.target, tt.params...)
			require.Error(t, err)
			assert.Nil(t, argv)
			assert.Equal(t, KindEncoding, KindOf(err))
			assert.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestArray_CopiesItems(t *testing.T) {
	items := []Param{String("a")}
	p := Array(items...)
	items[0] = String("b")

	argv, err := Encode("m", "c", p)
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, argv[1])
}

type streamItem struct {
	Key    string            `json:"key"`
	Values []int             `json:"values"`
	Meta   map[string]string `json:"meta"`
	Active bool              `json:"active"`
}

func TestObject_RoundTrip(t *testing.T) {
	original := streamItem{
		Key:    "k1",
		Values: []int{1, 2, 3},
		Meta:   map[string]string{"owner": "alice", "note": "two words"},
		Active: true,
	}

	argv, err := Encode("publish", "chain1", Object(original))
	require.NoError(t, err)
	require.Len(t, argv, 3)

	got := Decode[streamItem]("publish", process.CapturedOutput{Stdout: argv[1] + "\n"})
	require.True(t, got.OK())
	assert.Equal(t, original, got.Value)
}

func TestParamKind_String(t *testing.T) {
	assert.Equal(t, "message", ParamMessage.String())
	assert.Equal(t, "ParamKind(99)", ParamKind(99).String())
}
