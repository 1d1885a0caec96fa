// gatekeeperctl es un CLI chico contra la API HTTP de gatekeeper: registro,
// login, verificación TOTP, refresh y logout desde la terminal. Útil para
// smoke tests y para operar cuentas en dev.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/gatekeeper/internal/security/totp"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte, bearer string) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("GATEKEEPER_URL", "http://localhost:8080")
		out     = envOr("GATEKEEPER_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "gatekeeperctl",
		Short: "CLI para la API de gatekeeper",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base de la API (env GATEKEEPER_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: &http.Client{Timeout: 30 * time.Second}}
	// los flags se parsean después; refrescar antes de cada RunE
	refresh := func() { cl.BaseURL, cl.OutFormat = baseURL, out }

	var firstName, lastName, role string
	var mfaEnabled bool
	registerCmd := &cobra.Command{
		Use:   "register <email> <password>",
		Short: "Crea una cuenta",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			body, _ := json.Marshal(map[string]any{
				"first_name":  firstName,
				"last_name":   lastName,
				"email":       args[0],
				"password":    args[1],
				"role":        role,
				"mfa_enabled": mfaEnabled,
			})
			status, b, err := cl.do("POST", "/v1/auth/register", body, "")
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&firstName, "first-name", "", "Nombre")
	registerCmd.Flags().StringVar(&lastName, "last-name", "", "Apellido")
	registerCmd.Flags().StringVar(&role, "role", "USER", "Rol: USER|ADMIN|MANAGER")
	registerCmd.Flags().BoolVar(&mfaEnabled, "mfa", false, "Enrolar segundo factor TOTP")

	loginCmd := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Autentica y emite un par de tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			body, _ := json.Marshal(map[string]string{"email": args[0], "password": args[1]})
			status, b, err := cl.do("POST", "/v1/auth/authenticate", body, "")
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <email> <code>",
		Short: "Completa el segundo factor TOTP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			body, _ := json.Marshal(map[string]string{"email": args[0], "code": args[1]})
			status, b, err := cl.do("POST", "/v1/auth/verify", body, "")
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh <token>",
		Short: "Rota el par de tokens presentando uno vigente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			status, b, err := cl.do("POST", "/v1/auth/refresh-token", nil, args[0])
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout <token>",
		Short: "Revoca el access token dado",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			status, b, err := cl.do("POST", "/v1/auth/logout", nil, args[0])
			if err != nil {
				return err
			}
			cl.print(status, b)
			return nil
		},
	}

	// totp: deriva el código actual de un secreto base32. Evita depender de
	// una app authenticator durante pruebas manuales.
	var digits int
	var period time.Duration
	totpCmd := &cobra.Command{
		Use:   "totp <secret>",
		Short: "Calcula el código TOTP actual para un secreto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := totp.New("", digits, period, 0)
			code, err := v.GenerateCodeAt(args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Println(code)
			return nil
		},
	}
	totpCmd.Flags().IntVar(&digits, "digits", totp.DefaultDigits, "Dígitos del código")
	totpCmd.Flags().DurationVar(&period, "period", totp.DefaultPeriod, "Período del paso TOTP")

	root.AddCommand(registerCmd, loginCmd, verifyCmd, refreshCmd, logoutCmd, totpCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
