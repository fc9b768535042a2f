package config

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// hclFile is the HCL layout of Settings. Groups are labelled blocks holding repo blocks.
type hclFile struct {
	Naming          *hclNaming        `hcl:"naming,block"`
	Deployment      *hclDeployment    `hcl:"deployment,block"`
	AccountIDs      map[string]string `hcl:"account_ids,optional"`
	DefaultRegions  map[string]string `hcl:"default_regions,optional"`
	SharedResources map[string]string `hcl:"shared_resources,optional"`
	Environments    []string          `hcl:"environments,optional"`
	Approval        []string          `hcl:"approval,optional"`
	Groups          []*hclGroup       `hcl:"group,block"`
}

type hclNaming struct {
	Company string `hcl:"company"`
	Dept    string `hcl:"dept"`
	Project string `hcl:"project"`
}

type hclDeployment struct {
	Region       string `hcl:"region,optional"`
	CICDRoleName string `hcl:"cicd_role_name,optional"`
	GithubSecret string `hcl:"github_secret,optional"`
}

type hclGroup struct {
	Name  string     `hcl:"name,label"`
	Repos []*hclRepo `hcl:"repo,block"`
}

type hclRepo struct {
	PipelineName string   `hcl:"pipeline_name,optional"`
	Repository   string   `hcl:"repository"`
	Branch       string   `hcl:"branch"`
	Type         string   `hcl:"type"`
	Owner        string   `hcl:"owner,optional"`
	Secret       string   `hcl:"secret,optional"`
	Cron         string   `hcl:"cron,optional"`
	Targets      []string `hcl:"targets,optional"`
}

// loadHCL reads an HCL settings file. Expressions can read the process environment through
// the env object, e.g. env.ACCOUNT_DEV.
func loadHCL(filePath string, environ []string) (Settings, error) {
	var cfg Settings

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return cfg, errors.Wrapf(diags, "unable to parse config %s", filePath)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, evalContext(environ), &parsed)
	if diags.HasErrors() {
		return cfg, errors.Wrapf(diags, "unable to decode config %s", filePath)
	}

	if parsed.Naming != nil {
		cfg.Naming = Naming(*parsed.Naming)
	}
	if parsed.Deployment != nil {
		cfg.Deployment = Deployment(*parsed.Deployment)
	}
	cfg.AccountIDs = parsed.AccountIDs
	cfg.DefaultRegions = parsed.DefaultRegions
	cfg.SharedResources = parsed.SharedResources
	cfg.Environments = parsed.Environments
	cfg.Approval = parsed.Approval

	if len(parsed.Groups) > 0 {
		cfg.Groups = make(map[string][]ProjectRepo, len(parsed.Groups))
	}
	for _, group := range parsed.Groups {
		if _, ok := cfg.Groups[group.Name]; ok {
			return cfg, errors.Errorf("unable to decode config %s: group %q declared twice", filePath, group.Name)
		}

		repos := make([]ProjectRepo, 0, len(group.Repos))
		for _, repo := range group.Repos {
			repos = append(repos, ProjectRepo(*repo))
		}
		cfg.Groups[group.Name] = repos
	}

	return cfg, nil
}

func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = cty.StringVal(value)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}
