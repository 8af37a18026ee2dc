/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// exprdemo runs the four expression demos: composing a user type into an
// expression, the chain z = g(f(x)) with and without expressions, and
// evaluation without Jacobians. It takes no positional arguments.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/exprgraph/examples/chainrule"
	"github.com/gomlx/exprgraph/exprs"
	"github.com/gomlx/exprgraph/types/keys"
	"github.com/gomlx/exprgraph/types/vector"
	"github.com/gomlx/exprgraph/ui/commandline"
	"github.com/gomlx/exprgraph/ui/plots"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var flagPlot = flag.String("plot", "",
	"If set, save a PNG plot of the demo's component functions to the given file.")

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("exprdemo takes no arguments, got %q. See 'exprdemo -help'.", flag.Args())
		os.Exit(1)
	}
	err := exceptions.TryCatch[error](run)
	if err != nil {
		klog.Fatalf("Failed with error: %+v", err)
	}
}

func run() {
	fmt.Println(commandline.Section("wrap_class"))
	result, jacobians := chainrule.WrapClass()
	fmt.Println(commandline.Vector("res", result.(vector.Vector)))
	for _, key := range []keys.Key{keys.Symbol('x', 1), keys.Symbol('y', 1), keys.Symbol('z', 1)} {
		fmt.Println(commandline.Matrix("dres/d"+key.String(), jacobians.Of(key)))
	}

	fmt.Println(commandline.Section("with_expressions"))
	z, dzdx := chainrule.WithExpressions()
	fmt.Println(commandline.Vector("z", z.(vector.Vector)))
	fmt.Println(commandline.Matrix("dz/dx", dzdx))

	fmt.Println(commandline.Section("without_expressions"))
	zManual, dzdxManual := chainrule.WithoutExpressions()
	fmt.Println(commandline.Vector("z", zManual))
	fmt.Println(commandline.Matrix("dz/dx", dzdxManual))

	fmt.Println(commandline.Section("without_jacobians"))
	fmt.Println(commandline.Vector("z", chainrule.WithoutJacobians().(vector.Vector)))

	fmt.Println(commandline.Section("print_expression"))
	x := exprs.Leaf('x', 1)
	zExpr := exprs.Apply1(chainrule.GFn, exprs.Apply1(chainrule.FFn, x))
	values := exprs.NewValues()
	values.Insert(keys.Symbol('x', 1), chainrule.X0.Clone())
	chainrule.Describe(os.Stdout, zExpr, values)
	fmt.Println(commandline.ValuesSummary(values))

	if *flagPlot != "" {
		must.M(plots.ChainCurves(*flagPlot, -3, 3, 121))
		klog.Infof("saved plot to %s", *flagPlot)
	}
}
