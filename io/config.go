package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"
)

const ExampleModelFile = `[Model]

#######################
# Required Parameters #
#######################

# Output files are named <OutputDir>/<FileNameGalaxies>_z<redshift>_<file>.
FileNameGalaxies = model
OutputDir = path/to/output/dir

# Input trees are read from <SimulationDir>/<TreeName>.<file><TreeExtension>.
TreeName = trees_063
SimulationDir = path/to/trees/dir

# File containing the scale factor of every snapshot, one per line.
FileWithSnapList = path/to/millennium.a_list
LastSnapShotNr = 63

# (Inclusive) range of tree files to run on.
FirstFile = 0
LastFile = 7

# Cosmology of the simulation.
Omega = 0.25
OmegaLambda = 0.75
HubbleH = 0.73
# Mass of a single simulation particle in internal units.
PartMass = 0.0860657

#######################
# Optional Parameters #
#######################

# OutputFormat can be set to one of [ binary | sqlite ].
# OutputFormat = binary

# TreeType can be set to one of [ lhalo_binary | lhalo_ascii ].
# TreeType = lhalo_binary
# TreeExtension =

# Snapshots which galaxies are written out for. Can be given multiple times.
# Default is LastSnapShotNr only.
# OutputSnapshots = 63
# OutputSnapshots = 37

# Physics can be set to one of [ null | baryons ].
# Physics = baryons
# BaryonFrac = 0.17
# SfrEfficiency = 0.05
# RecycleFraction = 0.43
# Yield = 0.025
# ThreshMajorMerger = 0.3
# ThresholdSatDisruption = 1.0
# ReIncorporationFactor = 0.15

# Internal units. The defaults are Mpc/h, 10^10 Msun/h, and km/s.
# UnitLengthInCm = 3.08568e+24
# UnitMassInG = 1.989e+43
# UnitVelocityInCmPerS = 100000

# Number of integration substeps between snapshots.
# Steps = 10

# Number of tree files processed at once. Default is 1.
# Workers = 1

# By default, files whose output already exists are skipped.
# Overwrite = false

# Size of the scratch space used while joining FOF groups. It's unlikely that
# you'll need to change these.
# WorkingSetInitial = 1000
# WorkingSetMinGrowth = 1000
# WorkingSetGrowthFactor = 1.5
# WorkingSetMax = 1000000000

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# MetricsFile = metrics.prom
# ProfileFile = prof.out
# LogFile = log.out`

// ModelConfig contains every parameter of a run.
type ModelConfig struct {
	// Required
	FileNameGalaxies string `yaml:"FileNameGalaxies"`
	OutputDir        string `yaml:"OutputDir"`
	TreeName         string `yaml:"TreeName"`
	SimulationDir    string `yaml:"SimulationDir"`
	FileWithSnapList string `yaml:"FileWithSnapList"`
	LastSnapShotNr   int    `yaml:"LastSnapShotNr"`
	FirstFile        int    `yaml:"FirstFile"`
	LastFile         int    `yaml:"LastFile"`

	Omega       float64 `yaml:"Omega"`
	OmegaLambda float64 `yaml:"OmegaLambda"`
	HubbleH     float64 `yaml:"HubbleH"`
	PartMass    float64 `yaml:"PartMass"`

	// Optional
	OutputFormat    string `yaml:"OutputFormat"`
	TreeType        string `yaml:"TreeType"`
	TreeExtension   string `yaml:"TreeExtension"`
	OutputSnapshots []int  `yaml:"OutputSnapshots"`

	Physics                string  `yaml:"Physics"`
	BaryonFrac             float64 `yaml:"BaryonFrac"`
	SfrEfficiency          float64 `yaml:"SfrEfficiency"`
	RecycleFraction        float64 `yaml:"RecycleFraction"`
	Yield                  float64 `yaml:"Yield"`
	ThreshMajorMerger      float64 `yaml:"ThreshMajorMerger"`
	ThresholdSatDisruption float64 `yaml:"ThresholdSatDisruption"`
	ReIncorporationFactor  float64 `yaml:"ReIncorporationFactor"`

	UnitLengthInCm       float64 `yaml:"UnitLengthInCm"`
	UnitMassInG          float64 `yaml:"UnitMassInG"`
	UnitVelocityInCmPerS float64 `yaml:"UnitVelocityInCmPerS"`

	Steps     int  `yaml:"Steps"`
	Workers   int  `yaml:"Workers"`
	Overwrite bool `yaml:"Overwrite"`

	WorkingSetInitial      int     `yaml:"WorkingSetInitial"`
	WorkingSetMinGrowth    int     `yaml:"WorkingSetMinGrowth"`
	WorkingSetGrowthFactor float64 `yaml:"WorkingSetGrowthFactor"`
	WorkingSetMax          int     `yaml:"WorkingSetMax"`

	MetricsFile string `yaml:"MetricsFile"`
	LogFile     string `yaml:"LogFile"`
	ProfileFile string `yaml:"ProfileFile"`
}

type ModelWrapper struct {
	Model ModelConfig `yaml:"Model"`
}

func DefaultModelWrapper() *ModelWrapper {
	con := ModelConfig{}
	con.OutputFormat = "binary"
	con.TreeType = "lhalo_binary"
	con.Physics = "baryons"

	con.BaryonFrac = 0.17
	con.SfrEfficiency = 0.05
	con.RecycleFraction = 0.43
	con.Yield = 0.025
	con.ThreshMajorMerger = 0.3
	con.ThresholdSatDisruption = 1.0
	con.ReIncorporationFactor = 0.15

	con.UnitLengthInCm = 3.08568e+24
	con.UnitMassInG = 1.989e+43
	con.UnitVelocityInCmPerS = 100000

	con.Steps = 10
	con.Workers = 1

	con.WorkingSetInitial = 1000
	con.WorkingSetMinGrowth = 1000
	con.WorkingSetGrowthFactor = 1.5
	con.WorkingSetMax = 1000 * 1000 * 1000
	return &ModelWrapper{con}
}

func (con *ModelConfig) ValidFileNameGalaxies() bool {
	return con.FileNameGalaxies != ""
}
func (con *ModelConfig) ValidOutputDir() bool {
	return con.OutputDir != ""
}
func (con *ModelConfig) ValidTreeName() bool {
	return con.TreeName != ""
}
func (con *ModelConfig) ValidSimulationDir() bool {
	return con.SimulationDir != ""
}
func (con *ModelConfig) ValidFileWithSnapList() bool {
	return con.FileWithSnapList != ""
}
func (con *ModelConfig) ValidLastSnapShotNr() bool {
	return con.LastSnapShotNr >= 0
}
func (con *ModelConfig) ValidFileRange() bool {
	return con.FirstFile >= 0 && con.LastFile >= con.FirstFile
}
func (con *ModelConfig) ValidCosmology() bool {
	return con.Omega > 0 && con.OmegaLambda >= 0 && con.HubbleH > 0
}
func (con *ModelConfig) ValidPartMass() bool {
	return con.PartMass > 0
}
func (con *ModelConfig) ValidOutputFormat() bool {
	return con.OutputFormat == "binary" || con.OutputFormat == "sqlite"
}
func (con *ModelConfig) ValidTreeType() bool {
	return con.TreeType == "lhalo_binary" || con.TreeType == "lhalo_ascii"
}
func (con *ModelConfig) ValidOutputSnapshots() bool {
	for _, snap := range con.OutputSnapshots {
		if snap < 0 || snap > con.LastSnapShotNr {
			return false
		}
	}
	return true
}
func (con *ModelConfig) ValidPhysics() bool {
	return con.Physics == "null" || con.Physics == "baryons"
}
func (con *ModelConfig) ValidUnits() bool {
	return con.UnitLengthInCm > 0 && con.UnitMassInG > 0 &&
		con.UnitVelocityInCmPerS > 0
}
func (con *ModelConfig) ValidSteps() bool {
	return con.Steps > 0
}
func (con *ModelConfig) ValidWorkers() bool {
	return con.Workers > 0
}
func (con *ModelConfig) ValidWorkingSet() bool {
	return con.WorkingSetInitial > 0 && con.WorkingSetMinGrowth > 0 &&
		con.WorkingSetGrowthFactor >= 1 &&
		con.WorkingSetMax >= con.WorkingSetInitial
}
func (con *ModelConfig) ValidMetricsFile() bool {
	return con.MetricsFile != ""
}
func (con *ModelConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *ModelConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// CheckInit checks that every required parameter has been set to a valid
// value and fills in the parameters whose defaults depend on other
// parameters.
func (con *ModelConfig) CheckInit() error {
	switch {
	case !con.ValidFileNameGalaxies():
		return fmt.Errorf("Invalid/non-existent 'FileNameGalaxies' value.")
	case !con.ValidOutputDir():
		return fmt.Errorf("Invalid/non-existent 'OutputDir' value.")
	case !con.ValidTreeName():
		return fmt.Errorf("Invalid/non-existent 'TreeName' value.")
	case !con.ValidSimulationDir():
		return fmt.Errorf("Invalid/non-existent 'SimulationDir' value.")
	case !con.ValidFileWithSnapList():
		return fmt.Errorf("Invalid/non-existent 'FileWithSnapList' value.")
	case !con.ValidLastSnapShotNr():
		return fmt.Errorf("Invalid 'LastSnapShotNr' value, %d.",
			con.LastSnapShotNr)
	case !con.ValidFileRange():
		return fmt.Errorf("Invalid file range [%d, %d].",
			con.FirstFile, con.LastFile)
	case !con.ValidCosmology():
		return fmt.Errorf("Invalid/non-existent 'Omega', 'OmegaLambda', " +
			"or 'HubbleH' value.")
	case !con.ValidPartMass():
		return fmt.Errorf("Invalid/non-existent 'PartMass' value.")
	case !con.ValidOutputFormat():
		return fmt.Errorf("Unrecognized 'OutputFormat' value, '%s'. Only "+
			"'binary' and 'sqlite' are supported.", con.OutputFormat)
	case !con.ValidTreeType():
		return fmt.Errorf("Unrecognized 'TreeType' value, '%s'. Only "+
			"'lhalo_binary' and 'lhalo_ascii' are supported.", con.TreeType)
	case !con.ValidOutputSnapshots():
		return fmt.Errorf("'OutputSnapshots' must be in the range [0, %d].",
			con.LastSnapShotNr)
	case !con.ValidPhysics():
		return fmt.Errorf("Unrecognized 'Physics' value, '%s'.", con.Physics)
	case !con.ValidUnits():
		return fmt.Errorf("Unit values must be positive.")
	case !con.ValidSteps():
		return fmt.Errorf("Invalid 'Steps' value, %d.", con.Steps)
	case !con.ValidWorkers():
		return fmt.Errorf("Invalid 'Workers' value, %d.", con.Workers)
	case !con.ValidWorkingSet():
		return fmt.Errorf("Inconsistent 'WorkingSet*' values.")
	}

	if len(con.OutputSnapshots) == 0 {
		con.OutputSnapshots = []int{con.LastSnapShotNr}
	}
	return nil
}

// TreeFile returns the name of the given tree file.
func (con *ModelConfig) TreeFile(fileNr int) string {
	return filepath.Join(con.SimulationDir,
		fmt.Sprintf("%s.%d%s", con.TreeName, fileNr, con.TreeExtension))
}

// ReadConfig reads a parameter file and checks it. Files ending in .yaml or
// .yml are read as YAML documents with a top-level Model key, everything
// else as gcfg files with a [Model] section.
func ReadConfig(fname string) (*ModelConfig, error) {
	wrap := DefaultModelWrapper()

	switch strings.ToLower(filepath.Ext(fname)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(fname)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, wrap); err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
	default:
		if err := gcfg.ReadFileInto(wrap, fname); err != nil {
			return nil, err
		}
	}

	con := &wrap.Model
	if err := con.CheckInit(); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return con, nil
}
