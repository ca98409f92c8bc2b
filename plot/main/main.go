package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"path"
	"path/filepath"

	"github.com/phil-mansfield/gosage/io"
	plt "github.com/phil-mansfield/pyplot"
)

const (
	// Mass units of the output catalogs, in Msun/h.
	massUnit = 1e10

	massBins    = 40
	logMassLow  = 8.0
	logMassHigh = 12.5
)

var typeColors = []string{"r", "b", "g"}

func main() {
	var (
		outDir  string
		boxSize float64
	)
	flag.StringVar(&outDir, "Out", ".", "Directory the plots are written to.")
	flag.Float64Var(&boxSize, "BoxSize", 62.5,
		"Width of the simulation box (or the fraction covered by the "+
			"given files) in Mpc/h.")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("Must supply at least one galaxy catalog.")
	}
	volume := boxSize * boxSize * boxSize

	var stellar, mvir []float64
	var types []int
	for _, fname := range files {
		_, gals, err := io.ReadGalaxies(fname)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Read %d galaxies from %s.", len(gals), fname)

		for i := range gals {
			stellar = append(stellar, float64(gals[i].StellarMass)*massUnit)
			mvir = append(mvir, float64(gals[i].Mvir)*massUnit)
			types = append(types, int(gals[i].Type))
		}
	}

	name := filepath.Base(files[0])
	plotMassFunction(stellar, types, volume,
		path.Join(outDir, fmt.Sprintf("%s_smf.png", name)))
	plotStellarHalo(stellar, mvir, types,
		path.Join(outDir, fmt.Sprintf("%s_smhm.png", name)))

	plt.Execute()
}

// massFunction bins log10(ms) into n equal-width bins on [lo, hi) and
// returns the bin centers and the number density per dex.
func massFunction(ms []float64, lo, hi float64, n int, volume float64) (xs, ys []float64) {
	xs, ys = make([]float64, n), make([]float64, n)
	dx := (hi - lo) / float64(n)
	for i := range xs {
		xs[i] = lo + (float64(i)+0.5)*dx
	}

	for _, m := range ms {
		if m <= 0 {
			continue
		}
		i := int(math.Floor((math.Log10(m) - lo) / dx))
		if i >= 0 && i < n {
			ys[i]++
		}
	}

	for i := range ys {
		ys[i] /= volume * dx
	}
	return xs, ys
}

// selectType returns the elements of xs whose galaxy has type typ.
func selectType(xs []float64, types []int, typ int) []float64 {
	out := []float64{}
	for i := range xs {
		if types[i] == typ {
			out = append(out, xs[i])
		}
	}
	return out
}

// nonZero drops the points whose y value is zero, which can't be shown on a
// log axis.
func nonZero(xs, ys []float64) ([]float64, []float64) {
	outX, outY := []float64{}, []float64{}
	for i := range xs {
		if ys[i] > 0 {
			outX, outY = append(outX, xs[i]), append(outY, ys[i])
		}
	}
	return outX, outY
}

func plotMassFunction(stellar []float64, types []int, volume float64, fname string) {
	plt.Figure()

	xs, ys := nonZero(massFunction(stellar, logMassLow, logMassHigh, massBins, volume))
	plt.Plot(xs, ys, "k", plt.LW(3))
	for typ, c := range typeColors {
		ms := selectType(stellar, types, typ)
		xs, ys := nonZero(massFunction(ms, logMassLow, logMassHigh, massBins, volume))
		plt.Plot(xs, ys, plt.LW(2), plt.C(c))
	}

	plt.Title(fmt.Sprintf("Stellar mass function, %d galaxies", len(stellar)))
	plt.XLabel(`$\log_{10}(M_\star)$ $[M_\odot/h]$`, plt.FontSize(16))
	plt.YLabel(`$\phi$ $[h^3{\rm Mpc}^{-3}{\rm dex}^{-1}]$`, plt.FontSize(16))
	plt.YScale("log")
	plt.XLim(logMassLow, logMassHigh)
	plt.Grid(plt.Axis("y"), plt.Which("both"))
	plt.SaveFig(fname)
}

func plotStellarHalo(stellar, mvir []float64, types []int, fname string) {
	plt.Figure(plt.FigSize(8, 8))

	for typ, c := range typeColors {
		hs, ms := nonZero(selectType(mvir, types, typ), selectType(stellar, types, typ))
		if len(hs) == 0 {
			continue
		}
		plt.Plot(hs, ms, "o", plt.C(c))
	}

	plt.Title("Stellar mass-halo mass relation")
	plt.XLabel(`$M_{\rm vir}$ $[M_\odot/h]$`, plt.FontSize(16))
	plt.YLabel(`$M_\star$ $[M_\odot/h]$`, plt.FontSize(16))
	plt.XScale("log")
	plt.YScale("log")
	plt.Grid(plt.Axis("x"), plt.Which("both"))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}
