// Command minicon is a CLI front end over package minicon's two entry
// points: rewriting a query against a set of views, and checking whether a
// query can be answered at a location without violating transfer rules.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arjunsethi/minicon"
	"github.com/arjunsethi/minicon/compliance"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "minicon",
	Short: "Rewrite conjunctive queries against views, or check location compliance",
}

func main() {
	rootCmd.AddCommand(rewriteCmd, checkComplianceCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	rewriteQuery string
	rewriteViews []string
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Enumerate rewritings of a query over a set of views",
	RunE: func(cmd *cobra.Command, args []string) error {
		rewritings, err := minicon.Rewrite(rewriteQuery, rewriteViews)
		if err != nil {
			return err
		}
		if len(rewritings) == 0 {
			fmt.Println("no rewritings")
			return nil
		}
		for i, r := range rewritings {
			fmt.Printf("rewriting %d:\n", i)
			for _, use := range r.Views {
				fmt.Printf("  view %d (occurrence %d): %v\n", use.ViewIndex, use.Occurrence, use.Mapping)
			}
		}
		return nil
	},
}

var (
	checkQuery          string
	checkRules          []string
	checkResultLocation string
)

var checkComplianceCmd = &cobra.Command{
	Use:   "check-compliance",
	Short: "Decide whether a query can be answered at a location under transfer rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := make([]compliance.Rule, len(checkRules))
		for i, s := range checkRules {
			r, err := parseRule(s)
			if err != nil {
				return fmt.Errorf("rule %d: %w", i, err)
			}
			rules[i] = r
		}
		compliant, err := minicon.CheckCompliance(checkQuery, rules, checkResultLocation)
		if err != nil {
			return err
		}
		if compliant {
			fmt.Println("compliant")
		} else {
			fmt.Println("non-compliant")
		}
		return nil
	},
}

// parseRule parses a rule in location:attribute:relation:canTransfer:constraint
// form; relation and constraint may be left empty between their colons.
func parseRule(s string) (compliance.Rule, error) {
	parts := strings.SplitN(s, ":", 5)
	if len(parts) != 5 {
		return compliance.Rule{}, fmt.Errorf("%q: want location:attribute:relation:canTransfer:constraint", s)
	}
	canTransfer, err := strconv.ParseBool(parts[3])
	if err != nil {
		return compliance.Rule{}, fmt.Errorf("%q: canTransfer field %q is not a bool", s, parts[3])
	}
	return compliance.Rule{
		Location:    parts[0],
		Attribute:   parts[1],
		Relation:    parts[2],
		CanTransfer: canTransfer,
		Constraint:  parts[4],
	}, nil
}

func init() {
	rewriteCmd.Flags().StringVar(&rewriteQuery, "query", "", "query SQL")
	rewriteCmd.Flags().StringArrayVar(&rewriteViews, "view", nil, "view SQL (repeatable)")
	rewriteCmd.MarkFlagRequired("query")

	checkComplianceCmd.Flags().StringVar(&checkQuery, "query", "", "query SQL")
	checkComplianceCmd.Flags().StringArrayVar(&checkRules, "rule", nil, "location:attribute:relation:canTransfer:constraint (repeatable)")
	checkComplianceCmd.Flags().StringVar(&checkResultLocation, "result-location", "", "result location")
	checkComplianceCmd.MarkFlagRequired("query")
	checkComplianceCmd.MarkFlagRequired("result-location")
}
