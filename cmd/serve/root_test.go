package serve

import (
	"testing"

	"github.com/ValentinKolb/slotkv/rpc/common"
)

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"9000"}, false},
		{[]string{"9000", "backup"}, true},
		{[]string{"9000", "backup", "9001"}, false},
		{[]string{"1", "2", "3", "4"}, true},
	}

	for _, tt := range tests {
		err := validateArgs(nil, tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateArgs(%v): expected error=%t, got %v", tt.args, tt.wantErr, err)
		}
	}
}

func TestApplyArgs(t *testing.T) {
	tests := []struct {
		name         string
		endpoint     string
		args         []string
		wantEndpoint string
		wantBackup   string
		wantErr      bool
	}{
		{name: "no args", endpoint: "0.0.0.0:8080", wantEndpoint: "0.0.0.0:8080"},
		{name: "port", endpoint: "0.0.0.0:8080", args: []string{"9000"}, wantEndpoint: "0.0.0.0:9000"},
		{name: "ipv6 host", endpoint: "[::1]:8080", args: []string{"9000"}, wantEndpoint: "[::1]:9000"},
		{name: "backup", endpoint: "0.0.0.0:8080", args: []string{"9000", "10.0.0.2", "9001"}, wantEndpoint: "0.0.0.0:9000", wantBackup: "10.0.0.2:9001"},
		{name: "invalid port", endpoint: "0.0.0.0:8080", args: []string{"http"}, wantErr: true},
		{name: "port out of range", endpoint: "0.0.0.0:8080", args: []string{"70000"}, wantErr: true},
		{name: "invalid backup port", endpoint: "0.0.0.0:8080", args: []string{"9000", "backup", "x"}, wantErr: true},
		{name: "unix endpoint", endpoint: "/tmp/slotkv.sock", args: []string{"9000"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &common.ServerConfig{Transport: common.ServerTransportConfig{Endpoint: tt.endpoint}}
			err := applyArgs(config, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%t, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if config.Transport.Endpoint != tt.wantEndpoint {
				t.Errorf("Expected endpoint %q, got %q", tt.wantEndpoint, config.Transport.Endpoint)
			}
			if config.BackupEndpoint != tt.wantBackup {
				t.Errorf("Expected backup %q, got %q", tt.wantBackup, config.BackupEndpoint)
			}
		})
	}
}
