// Package config loads the project settings the compiler runs with.
//
// Settings are read once at start-up from a YAML, JSON or HCL file and are not modified
// afterwards; a new file means a new Settings value.
package config

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

var (
	ErrUnknownGroup       = errors.New("unknown group")
	ErrUnsupportedFormat  = errors.New("unsupported config format")
	ErrInvalidEnvironment = errors.New("invalid environment")
)

// Settings is the project configuration.
type Settings struct {
	Naming          Naming            `yaml:"naming"`
	Deployment      Deployment        `yaml:"deployment"`
	AccountIDs      map[string]string `yaml:"accountIds"`
	DefaultRegions  map[string]string `yaml:"defaultRegions"`
	SharedResources map[string]string `yaml:"sharedResources"`
	Environments    []string          `yaml:"environments"`
	// Approval lists the gated environments. Nil keeps the default gate on prod, an empty
	// list disables every gate.
	Approval []string `yaml:"approval"`
	// Groups holds every other top level key: a named list of repositories.
	Groups map[string][]ProjectRepo `yaml:",inline"`
}

// Naming is the company/dept/project triple every name and parameter path derives from.
type Naming struct {
	Company string `yaml:"company"`
	Dept    string `yaml:"dept"`
	Project string `yaml:"project"`
}

// Deployment holds the cross-account deployment settings.
type Deployment struct {
	Region       string `yaml:"region"`
	CICDRoleName string `yaml:"cicdRoleName"`
	// GithubSecret is the secret reference used by GitHub repositories without their own.
	GithubSecret string `yaml:"githubSecret"`
}

// ProjectRepo is one repository entry of a group.
type ProjectRepo struct {
	PipelineName string   `yaml:"pipelineName"`
	Repository   string   `yaml:"repository"`
	Branch       string   `yaml:"branch"`
	Type         string   `yaml:"type"`
	Owner        string   `yaml:"owner"`
	Secret       string   `yaml:"secret"`
	Cron         string   `yaml:"cron"`
	Targets      []string `yaml:"targets"`
}

// Default returns the baseline settings used for anything the file does not set.
func Default() Settings {
	return Settings{
		Environments: []string{string(model.Dev), string(model.Test), string(model.Prod)},
	}
}

// Load reads the settings at filePath. The format is chosen from the extension: .yml, .yaml
// and .json are read as YAML, .hcl as HCL.
func Load(filePath string) (Settings, error) {
	cfg := Default()

	var (
		fileCfg Settings
		err     error
	)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yml", ".yaml", ".json":
		fileCfg, err = loadYAML(filePath)
	case ".hcl":
		fileCfg, err = loadHCL(filePath, os.Environ())
	default:
		return cfg, errors.Wrapf(ErrUnsupportedFormat, "%s", filePath)
	}
	if err != nil {
		return cfg, err
	}

	cfg = merge(cfg, fileCfg)

	err = cfg.Validate()
	if err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", filePath)
	}

	return cfg, nil
}

func loadYAML(filePath string) (Settings, error) {
	var cfg Settings

	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, errors.Wrapf(err, "unable to read config %s", filePath)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, errors.Wrapf(err, "unable to parse config %s", filePath)
	}

	return cfg, nil
}

func merge(base, override Settings) Settings {
	out := base

	if override.Naming != (Naming{}) {
		out.Naming = override.Naming
	}
	if override.Deployment != (Deployment{}) {
		out.Deployment = override.Deployment
	}
	if len(override.AccountIDs) > 0 {
		out.AccountIDs = copyMap(override.AccountIDs)
	}
	if len(override.DefaultRegions) > 0 {
		out.DefaultRegions = copyMap(override.DefaultRegions)
	}
	if len(override.SharedResources) > 0 {
		out.SharedResources = copyMap(override.SharedResources)
	}
	if len(override.Environments) > 0 {
		out.Environments = append([]string{}, override.Environments...)
	}
	if override.Approval != nil {
		out.Approval = append([]string{}, override.Approval...)
	}
	if len(override.Groups) > 0 {
		out.Groups = make(map[string][]ProjectRepo, len(override.Groups))
		for name, repos := range override.Groups {
			out.Groups[name] = append([]ProjectRepo{}, repos...)
		}
	}

	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

// Validate checks the environment lists.
func (s Settings) Validate() error {
	seen := make(map[string]struct{}, len(s.Environments))
	for _, env := range s.Environments {
		if strings.TrimSpace(env) == "" {
			return errors.Wrap(ErrInvalidEnvironment, "environments: empty name")
		}
		if _, ok := seen[env]; ok {
			return errors.Wrapf(ErrInvalidEnvironment, "environments: %q listed twice", env)
		}
		seen[env] = struct{}{}
	}

	for _, env := range s.Approval {
		if strings.TrimSpace(env) == "" {
			return errors.Wrap(ErrInvalidEnvironment, "approval: empty name")
		}
	}

	return nil
}

// Prefix is the naming prefix of every pipeline: company-dept-project.
func (s Settings) Prefix() string {
	return strings.Join(nonEmpty(s.Naming.Company, s.Naming.Dept, s.Naming.Project), "-")
}

// ParameterRoot is the root of every parameter path: /company/dept/project.
func (s Settings) ParameterRoot() string {
	return path.Join(append([]string{"/"}, nonEmpty(s.Naming.Company, s.Naming.Dept, s.Naming.Project)...)...)
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// Policy returns the compiler policy described by the settings. Environments without a
// default region fall back to the deployment region.
func (s Settings) Policy() model.Policy {
	policy := model.Policy{
		EnvironmentOrder: toEnvironments(s.Environments),
		Accounts:         make(model.AccountRegistry, len(s.AccountIDs)),
		Regions:          make(map[model.EnvironmentID]string, len(s.AccountIDs)),
		ParameterRoot:    s.ParameterRoot(),
		CrossAccountRole: s.Deployment.CICDRoleName,
	}
	if s.Approval != nil {
		policy.ApprovalRequired = toEnvironments(s.Approval)
	}

	for env, account := range s.AccountIDs {
		policy.Accounts[model.EnvironmentID(env)] = account
		if region := s.Deployment.Region; region != "" {
			policy.Regions[model.EnvironmentID(env)] = region
		}
	}
	for env, region := range s.DefaultRegions {
		if region != "" {
			policy.Regions[model.EnvironmentID(env)] = region
		}
	}

	return policy
}

func toEnvironments(in []string) []model.EnvironmentID {
	out := make([]model.EnvironmentID, 0, len(in))
	for _, env := range in {
		out = append(out, model.EnvironmentID(env))
	}

	return out
}

// GroupNames returns the group names in lexical order.
func (s Settings) GroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Descriptors returns the descriptors of group, or of every group in GroupNames order when
// group is empty.
//
// A repository with an unrecognised type gets no trigger, so the compiler rejects that
// descriptor alone.
func (s Settings) Descriptors(group string) ([]model.RepoDescriptor, error) {
	names := s.GroupNames()
	if group != "" {
		if _, ok := s.Groups[group]; !ok {
			return nil, errors.Wrapf(ErrUnknownGroup, "%q", group)
		}
		names = []string{group}
	}

	var descriptors []model.RepoDescriptor
	for _, name := range names {
		for _, repo := range s.Groups[name] {
			descriptors = append(descriptors, s.descriptor(repo))
		}
	}

	return descriptors, nil
}

func (s Settings) descriptor(repo ProjectRepo) model.RepoDescriptor {
	desc := model.RepoDescriptor{
		PipelineName: repo.PipelineName,
		Repository:   repo.Repository,
		Branch:       repo.Branch,
		Cron:         repo.Cron,
	}
	if len(repo.Targets) > 0 {
		desc.Targets = toEnvironments(repo.Targets)
	}

	switch {
	case strings.EqualFold(repo.Type, string(model.CodeCommitTriggerType)):
		desc.Trigger = model.CodeCommitTrigger{}
	case strings.EqualFold(repo.Type, string(model.GitHubTriggerType)):
		secret := repo.Secret
		if secret == "" {
			secret = s.Deployment.GithubSecret
		}
		desc.Trigger = model.GitHubTrigger{Owner: repo.Owner, SecretRef: secret}
	}

	return desc
}
