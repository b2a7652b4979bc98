package main

import (
	"fmt"
	"math/rand"

	fastsparse "github.com/474-GAMS/fastSparse"
	"gonum.org/v1/gonum/mat"
)

func main() {
	// y depends on features 0 and 3 only
	rng := rand.New(rand.NewSource(7))
	n, p := 60, 8
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		y[i] = 1 + 2*X.At(i, 0) - 3*X.At(i, 3) + 0.01*rng.NormFloat64()
	}

	cfg := fastsparse.NewDefaultConfig()
	cfg.NLambda = 20
	cfg.MaxSuppSize = 5

	path, err := fastsparse.FitDense(X, y, cfg)
	if err != nil {
		panic(err)
	}

	fmt.Println("Путь регуляризации (gamma = 0):")
	for _, g := range path.Slices[0].Points {
		fmt.Printf("λ=%8.4f  support=%d  objective=%.4f\n", g.Lambda, g.SuppSize, g.Objective)
	}

	last := path.Slices[0].Points[len(path.Slices[0].Points)-1]
	fmt.Println("\nВеса:", last.Beta.Dense())
	fmt.Println("Смещение:", last.Intercept)

	// Проверка точности
	pred, _ := last.Link(fastsparse.NewDenseDesign(X))
	for i := 0; i < 4; i++ {
		fmt.Printf("y_true: %.3f, y_pred: %.4f\n", y[i], pred[i])
	}
}
