package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/policy"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "배분 정책 검증/조회",
	Long: `배분 정책 YAML을 검증하거나 현재 적용 중인 정책을 출력합니다.

Example:
  go run ./cmd/folio policy validate --file config/policy/conviction_v1.yaml
  go run ./cmd/folio policy show`,
}

var (
	policyValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "정책 파일 검증 + 해시 출력",
		RunE:  runPolicyValidate,
	}

	policyShowCmd = &cobra.Command{
		Use:   "show",
		Short: "현재 정책을 YAML로 출력",
		RunE:  runPolicyShow,
	}

	// Flags
	policyValidateFile string
)

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyValidateCmd)
	policyCmd.AddCommand(policyShowCmd)

	policyValidateCmd.Flags().StringVar(&policyValidateFile, "file", "", "policy YAML to validate")
	_ = policyValidateCmd.MarkFlagRequired("file")
}

func runPolicyValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := policy.Load(policyValidateFile)
	if err != nil {
		PrintError(fmt.Sprintf("%s: %v", policyValidateFile, err))
		return err
	}

	hash, err := policy.Hash(cfg)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s is valid", policyValidateFile))
	PrintKeyValue("Policy", fmt.Sprintf("%s v%s", cfg.Meta.PolicyID, cfg.Meta.Version), 8)
	PrintKeyValue("Hash", hash, 8)

	for _, w := range policy.Warn(cfg) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(false)
	if err != nil {
		return err
	}

	data, err := policy.Marshal(rt.policy)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "# policy_hash: %s\n", rt.engine.PolicyHash())
	_, err = out.Write(data)
	return err
}
