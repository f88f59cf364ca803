package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campuslabs/softreq/pkg/authz"
)

type policyFlags struct {
	modelPath  string
	policyPath string
}

func (f *policyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.modelPath, "model", "", "Casbin model file (default: embedded)")
	cmd.Flags().StringVar(&f.policyPath, "policy", "", "Policy CSV file (default: embedded)")
}

func (f *policyFlags) service() (*authz.Service, error) {
	return authz.NewService(authz.Config{
		ModelPath:  f.modelPath,
		PolicyPath: f.policyPath,
		FlagMode:   authz.ModeEnforce,
	})
}

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Evaluate the access policy offline",
	}
	cmd.AddCommand(newPolicyCheckCmd(), newPolicyTableCmd())
	return cmd
}

type checkOutput struct {
	Identity    string   `json:"identity"`
	Roles       []string `json:"roles"`
	Operation   string   `json:"operation"`
	Allowed     bool     `json:"allowed"`
	MatchedRole string   `json:"matched_role,omitempty"`
	Trace       []string `json:"trace,omitempty"`
}

func newPolicyCheckCmd() *cobra.Command {
	var (
		flags    policyFlags
		identity string
		roles    []string
		op       string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether the given roles may invoke an operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			operation, ok := authz.ParseOperation(op)
			if !ok {
				return fmt.Errorf("unknown --op %q", op)
			}
			svc, err := flags.service()
			if err != nil {
				return err
			}
			res, err := svc.Inspect(cmd.Context(), authz.NewPrincipal(identity, roles...), operation)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), checkOutput{
				Identity:    identity,
				Roles:       roles,
				Operation:   string(operation),
				Allowed:     res.Allowed,
				MatchedRole: res.MatchedRole,
				Trace:       res.Trace,
			})
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&identity, "identity", "cli", "Principal identity")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role held by the principal (repeatable)")
	cmd.Flags().StringVar(&op, "op", "", "Operation: "+operationNames())
	_ = cmd.MarkFlagRequired("op")
	return cmd
}

func newPolicyTableCmd() *cobra.Command {
	var (
		flags policyFlags
		roles []string
	)

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the operation matrix for a set of roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := flags.service()
			if err != nil {
				return err
			}
			table, err := svc.Table(cmd.Context(), roles...)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			header := []string{"role"}
			for _, op := range authz.Operations {
				header = append(header, string(op))
			}
			fmt.Fprintln(w, strings.Join(header, "\t"))

			names := make([]string, 0, len(table))
			for role := range table {
				names = append(names, role)
			}
			sort.Strings(names)
			for _, role := range names {
				row := []string{role}
				for _, op := range authz.Operations {
					mark := "-"
					if table[role][op] {
						mark = "allow"
					}
					row = append(row, mark)
				}
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringSliceVar(&roles, "role", []string{"ADMIN", "PROFESSOR"}, "Roles to evaluate (repeatable)")
	return cmd
}

func operationNames() string {
	names := make([]string, 0, len(authz.Operations))
	for _, op := range authz.Operations {
		names = append(names, string(op))
	}
	return strings.Join(names, ", ")
}
