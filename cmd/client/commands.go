package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/harrylevesque/clientdir/internal/models"
	"github.com/harrylevesque/clientdir/internal/validate"
)

type app struct {
	api   *apiClient
	state string
	out   io.Writer
}

func (a *app) session() (*localSession, error) {
	return loadSession(a.state, a.api.base, time.Now())
}

func (a *app) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			if !validate.Credentials(username, password) {
				return errors.New("please fill in every field")
			}

			var resp struct {
				Token     string            `json:"token"`
				ExpiresAt time.Time         `json:"expires_at"`
				User      models.PublicUser `json:"user"`
			}
			body := map[string]string{"username": username, "password": password}
			if err := a.api.do(cmd.Context(), http.MethodPost, "/auth/login", "", body, &resp); err != nil {
				return err
			}
			err := saveSession(a.state, localSession{
				Server:    a.api.base,
				Username:  resp.User.Username,
				Token:     resp.Token,
				ExpiresAt: resp.ExpiresAt,
			})
			if err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(a.out, "Logged in as %s (%s).\n", resp.User.Name, resp.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if errors.Is(err, errNotLoggedIn) {
				fmt.Fprintln(a.out, "Not logged in.")
				return removeSession(a.state)
			}
			if err != nil {
				return err
			}
			var respErr *responseError
			err = a.api.do(cmd.Context(), http.MethodPost, "/auth/logout", sess.Token, nil, nil)
			if err != nil && !(errors.As(err, &respErr) && respErr.Status == http.StatusUnauthorized) {
				return err
			}
			if err := removeSession(a.state); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var reg models.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fields := validate.RegistrationErrors(reg); len(fields) > 0 {
				return &responseError{Status: http.StatusBadRequest, Message: "invalid registration", Fields: fields}
			}
			var user models.PublicUser
			if err := a.api.do(cmd.Context(), http.MethodPost, "/auth/register", "", reg, &user); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account %s created (id %d). You can now log in.\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm", "", "Password confirmation")
	cmd.Flags().StringVar(&reg.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	return cmd
}

func (a *app) clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List and manage clients",
	}
	cmd.AddCommand(a.clientsListCmd(), a.clientsGetCmd(), a.clientsCreateCmd(), a.clientsDeleteCmd())
	return cmd
}

func (a *app) clientsListCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients, optionally filtered by name or phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			path := "/clients"
			if query != "" {
				path += "?q=" + url.QueryEscape(query)
			}
			var list []models.Client
			if err := a.api.do(cmd.Context(), http.MethodGet, path, sess.Token, nil, &list); err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "No clients found.")
				return nil
			}
			printClients(a.out, list)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Name or phone fragment")
	return cmd
}

func (a *app) clientsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := a.session()
			if err != nil {
				return err
			}
			var c models.Client
			if err := a.api.do(cmd.Context(), http.MethodGet, "/clients/"+strconv.Itoa(id), sess.Token, nil, &c); err != nil {
				return err
			}
			printClient(a.out, c)
			return nil
		},
	}
}

func (a *app) clientsCreateCmd() *cobra.Command {
	var in models.ClientInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fields := validate.ClientErrors(in); len(fields) > 0 {
				return &responseError{Status: http.StatusBadRequest, Message: "invalid client", Fields: fields}
			}
			sess, err := a.session()
			if err != nil {
				return err
			}
			var c models.Client
			if err := a.api.do(cmd.Context(), http.MethodPost, "/clients", sess.Token, in, &c); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Client registered.")
			printClient(a.out, c)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Client name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone, 10 or 11 digits")
	cmd.Flags().StringVar(&in.Address.Street, "street", "", "Street")
	cmd.Flags().StringVar(&in.Address.City, "city", "", "City")
	cmd.Flags().StringVar(&in.Address.Zipcode, "zipcode", "", "CEP")
	return cmd
}

func (a *app) clientsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := a.session()
			if err != nil {
				return err
			}
			if err := a.api.do(cmd.Context(), http.MethodDelete, "/clients/"+strconv.Itoa(id), sess.Token, nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Client %d deleted.\n", id)
			return nil
		},
	}
}

func (a *app) regionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "region",
		Short: "Show the map region framing every client",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			var region models.Region
			if err := a.api.do(cmd.Context(), http.MethodGet, "/clients/region", sess.Token, nil, &region); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "center %.4f, %.4f  span %.4f x %.4f\n",
				region.Latitude, region.Longitude, region.LatitudeDelta, region.LongitudeDelta)
			return nil
		},
	}
}

func (a *app) cepCmd() *cobra.Command {
	var coordinates bool
	cmd := &cobra.Command{
		Use:   "cep <cep>",
		Short: "Look up a postal code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cep := validate.Digits(args[0])
			if coordinates {
				var geo struct {
					CEP string  `json:"cep"`
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				}
				if err := a.api.do(cmd.Context(), http.MethodGet, "/cep/"+cep+"/coordinates", "", nil, &geo); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s: %.4f, %.4f\n", geo.CEP, geo.Lat, geo.Lng)
				return nil
			}
			var addr models.PostalAddress
			if err := a.api.do(cmd.Context(), http.MethodGet, "/cep/"+cep, "", nil, &addr); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\n%s, %s - %s/%s\n", validate.FormatCEP(addr.CEP), addr.Street, addr.District, addr.City, addr.State)
			return nil
		},
	}
	cmd.Flags().BoolVar(&coordinates, "coordinates", false, "Print coordinates instead of the address")
	return cmd
}

func printClients(w io.Writer, list []models.Client) {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			validate.CapitalizeWords(c.Name),
			validate.FormatPhone(c.Phone),
			c.Email,
			validate.FormatAddress(c.Address.Street, c.Address.City, validate.FormatCEP(c.Address.Zipcode)),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Phone", "Email", "Address"})
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func printClient(w io.Writer, c models.Client) {
	fmt.Fprintf(w, "#%d %s\n", c.ID, validate.CapitalizeWords(c.Name))
	fmt.Fprintf(w, "  email:   %s\n", c.Email)
	fmt.Fprintf(w, "  phone:   %s\n", validate.FormatPhone(c.Phone))
	fmt.Fprintf(w, "  address: %s\n", validate.FormatAddress(c.Address.Street, c.Address.City, validate.FormatCEP(c.Address.Zipcode)))
	fmt.Fprintf(w, "  geo:     %.4f, %.4f\n", c.Address.Geo.Lat, c.Address.Geo.Lng)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id %q", s)
	}
	return id, nil
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
