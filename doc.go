// Package vocabgen generates source code for an object vocabulary.
//
// A run discovers the types of the configured source packages through a
// provider.TypeCatalog, classifies each one as a Trait, an ObjectType or a
// Verb, renders one file per type, and writes the files under
//
//	<targetDirectory>/<targetPackage as path>/{traits,objectTypes,verbs}/
//
// Runs are deterministic: the same vocabulary and config always produce
// byte-identical files, and unchanged files are not rewritten.
//
//	opts, err := vocabgen.LoadOptionsFile("vocabgen.yaml")
//	if err != nil {
//	    return err
//	}
//	cfg, err := vocabgen.NewConfig(opts)
//	if err != nil {
//	    return err
//	}
//	result, err := vocabgen.Generate(ctx, cfg, nil)
package vocabgen
