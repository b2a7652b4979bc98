package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	fastsparse "github.com/474-GAMS/fastSparse"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type fitOptions struct {
	xPath, yPath, configPath string
	loss, penalty, algorithm string
	maxSuppSize, nLambda     int
	nGamma, nJobs            int
	sparse, verbose          bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fastsparse",
		Short: "L0-regularized regression and classification paths",
		Long: `fastsparse fits regularization paths of L0, L0L1 and L0L2 penalized linear
models with coordinate descent and optional local swap search.`,
		SilenceUsage: true,
	}
	root.AddCommand(newFitCmd())
	return root
}

func newFitCmd() *cobra.Command {
	var opts fitOptions
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a path from CSV data and print its summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			if opts.verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
				cfg.Logger = logger
			}
			return runFit(cmd.OutOrStdout(), opts, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.xPath, "x", "", "CSV file with the design matrix, one row per observation")
	f.StringVar(&opts.yPath, "y", "", "CSV file with the response, one value per line")
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML file with fit settings")
	f.StringVar(&opts.loss, "loss", "", "SquaredError, Logistic, SquaredHinge or Exponential")
	f.StringVar(&opts.penalty, "penalty", "", "L0, L0L1 or L0L2")
	f.StringVar(&opts.algorithm, "algorithm", "", "CD or CDPSI")
	f.IntVar(&opts.maxSuppSize, "max-supp-size", 0, "stop a gamma slice once the support exceeds this")
	f.IntVar(&opts.nLambda, "n-lambda", 0, "number of lambda values per gamma")
	f.IntVar(&opts.nGamma, "n-gamma", 0, "number of gamma values")
	f.IntVarP(&opts.nJobs, "parallel", "p", 0, "number of gamma slices solved in parallel")
	f.BoolVar(&opts.sparse, "sparse", false, "store the design matrix in compressed sparse column form")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable fit logs")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

// config loads the YAML file, if any, and applies the flags that were set.
func (o fitOptions) config(cmd *cobra.Command) (*fastsparse.Config, error) {
	cfg := fastsparse.NewDefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = fastsparse.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	f := cmd.Flags()
	if f.Changed("loss") {
		v, err := fastsparse.ParseLoss(o.loss)
		if err != nil {
			return nil, err
		}
		cfg.Loss = v
	}
	if f.Changed("penalty") {
		v, err := fastsparse.ParsePenalty(o.penalty)
		if err != nil {
			return nil, err
		}
		cfg.Penalty = v
	}
	if f.Changed("algorithm") {
		v, err := fastsparse.ParseAlgorithm(o.algorithm)
		if err != nil {
			return nil, err
		}
		cfg.Algorithm = v
	}
	if f.Changed("max-supp-size") {
		cfg.MaxSuppSize = o.maxSuppSize
	}
	if f.Changed("n-lambda") {
		cfg.NLambda = o.nLambda
	}
	if f.Changed("n-gamma") {
		cfg.NGamma = o.nGamma
	}
	if f.Changed("parallel") {
		cfg.NJobs = o.nJobs
	}
	return cfg, nil
}

func runFit(out io.Writer, opts fitOptions, cfg *fastsparse.Config) error {
	X, err := readMatrix(opts.xPath)
	if err != nil {
		return err
	}
	y, err := readVector(opts.yPath)
	if err != nil {
		return err
	}

	var path *fastsparse.Path
	if opts.sparse {
		csc, err := toCSC(X)
		if err != nil {
			return err
		}
		path, err = fastsparse.FitSparse(csc, y, cfg)
		if err != nil {
			return err
		}
	} else if path, err = fastsparse.FitDense(X, y, cfg); err != nil {
		return err
	}
	return printPath(out, path)
}

func printPath(out io.Writer, path *fastsparse.Path) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Gamma", "Lambda", "Support", "Intercept", "Objective", "Converged"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})

	points := 0
	for _, s := range path.Slices {
		for _, g := range s.Points {
			table.Append([]string{
				strconv.FormatFloat(g.Gamma, 'g', 4, 64),
				strconv.FormatFloat(g.Lambda, 'g', 4, 64),
				strconv.Itoa(g.SuppSize),
				strconv.FormatFloat(g.Intercept, 'g', 6, 64),
				strconv.FormatFloat(g.Objective, 'g', 6, 64),
				strconv.FormatBool(g.Converged),
			})
			points++
		}
	}
	table.SetFooter([]string{
		fmt.Sprintf("%v/%v", path.Loss, path.Penalty),
		fmt.Sprintf("%d points", points),
		fmt.Sprintf("max %d", path.MaxSuppSize()),
		"", "", "",
	})
	table.Render()

	if _, err := io.Copy(out, &buf); err != nil {
		return err
	}
	for _, d := range path.Diagnostics {
		if _, err := fmt.Fprintln(out, "note:", d); err != nil {
			return err
		}
	}
	return nil
}

func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no rows", path)
	}
	return records, nil
}

func readMatrix(path string) (*mat.Dense, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	n, p := len(records), len(records[0])
	data := make([]float64, 0, n*p)
	for i, row := range records {
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %d: %w", path, i+1, j+1, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(n, p, data), nil
}

func readVector(path string) ([]float64, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(records))
	for i, row := range records {
		if len(row) != 1 {
			return nil, fmt.Errorf("%s: row %d has %d values, want 1", path, i+1, len(row))
		}
		v, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		y[i] = v
	}
	return y, nil
}

func toCSC(X *mat.Dense) (*fastsparse.CSC, error) {
	n, p := X.Dims()
	var ri, ci []int
	var v []float64
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			if x := X.At(i, j); x != 0 {
				ri = append(ri, i)
				ci = append(ci, j)
				v = append(v, x)
			}
		}
	}
	return fastsparse.NewCSCFromTriplets(n, p, ri, ci, v)
}
