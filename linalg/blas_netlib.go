//go:build netlib
// +build netlib

package linalg

/*
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
#include <cblas.h>
*/
import "C"

import (
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

func init() {
	blas64.Use(netblas.Implementation{})
	log.Debug("using netlib to accelerate BLAS")
}
