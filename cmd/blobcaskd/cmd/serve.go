package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kindlewave/blobcask/pkg/api"
	"github.com/kindlewave/blobcask/pkg/tlsconfig"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start blobcaskd's REST API server with X-API-Key authentication.

Example:
  blobcaskd serve --port=8080
  blobcaskd serve --tls-keystore=server.pem --tls-client-auth=required --tls-truststore=ca.pem`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := storeFromContext(cmd)
		if err != nil {
			return err
		}
		cfg, err := configFromContext(cmd)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		if port != 0 {
			cfg.Port = port
		}
		if apiKey, _ := cmd.Flags().GetString("api-key"); apiKey != "" {
			cfg.Security.APIKey = apiKey
		}
		if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
			return fmt.Errorf("no API key configured; set security.api_key in the config file or pass --api-key")
		}

		serverConfig := api.ServerConfig{
			Port:    cfg.Port,
			APIKey:  cfg.Security.APIKey,
			DataDir: cfg.DataDir,
		}

		metrics := api.NewMetrics()
		router := api.NewRouter(bs, serverConfig, metrics)
		addr := fmt.Sprintf(":%d", serverConfig.Port)

		bundle, err := tlsBundleFromFlags(cmd)
		if err != nil {
			return err
		}
		if bundle == nil {
			cmd.Printf("Starting blobcaskd REST API server on %s\n", addr)
			return http.ListenAndServe(addr, router)
		}

		tlsCfg, err := bundle.TLSConfig(tlsconfig.Server)
		if err != nil {
			return err
		}
		server := &http.Server{Addr: addr, Handler: router, TLSConfig: tlsCfg}
		cmd.Printf("Starting blobcaskd REST API server (TLS) on %s\n", addr)
		return server.ListenAndServeTLS("", "")
	},
}

// tlsBundleFromFlags builds a tlsconfig.Bundle from --tls-* flags, or
// returns (nil, nil) if TLS was not requested.
func tlsBundleFromFlags(cmd *cobra.Command) (*tlsconfig.Bundle, error) {
	keystore, _ := cmd.Flags().GetString("tls-keystore")
	if keystore == "" {
		return nil, nil
	}
	truststore, _ := cmd.Flags().GetString("tls-truststore")
	clientAuth, _ := cmd.Flags().GetString("tls-client-auth")

	mode := tlsconfig.ClientAuthNone
	switch clientAuth {
	case "requested":
		mode = tlsconfig.ClientAuthRequested
	case "required":
		mode = tlsconfig.ClientAuthRequired
	}

	// PEM keystores carry no password of their own; tlsconfig.Builder still
	// enforces the path/password pairing rule, so a fixed placeholder
	// satisfies it without adding a flag nobody would set.
	const pemPlaceholderPassword = "pem"

	builder := tlsconfig.NewBuilder("TLS").
		WithEnabledProtocols([]string{"TLSv1.3", "TLSv1.2"}).
		WithClientAuth(mode).
		WithKeyStore(tlsconfig.Store{Type: "PEM", Path: keystore, Password: pemPlaceholderPassword})
	if truststore != "" {
		builder = builder.WithTrustStore(tlsconfig.Store{Type: "PEM", Path: truststore, Password: pemPlaceholderPassword})
	}

	return builder.Build()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides the config file)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides the config file)")
	serveCmd.Flags().String("tls-keystore", "", "Path to a combined cert+key PEM file; enables TLS")
	serveCmd.Flags().String("tls-truststore", "", "Path to a CA PEM file for client certificate verification")
	serveCmd.Flags().String("tls-client-auth", "none", "Client certificate auth mode: none, requested, or required")
}
