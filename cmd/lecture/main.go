// Command lecture is a guided walkthrough of training convolutional networks
// on MNIST: it loads the dataset, builds one of two CNN variants, trains it
// with Adam, and reports validation accuracy. With -pretrained it instead
// classifies an image using an imported ONNX model.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/primer-ml/primer/internal/autodiff"
	"github.com/primer-ml/primer/internal/backend/cpu"
	"github.com/primer-ml/primer/internal/checkpoint"
	"github.com/primer-ml/primer/internal/dataset/mnist"
	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/optim"
	"github.com/primer-ml/primer/internal/pretrained"
	"github.com/primer-ml/primer/internal/tensor"
)

type backendT = *autodiff.Backend[*cpu.CPUBackend]

func main() {
	dataDir := flag.String("data", "./data", "directory with MNIST IDX files")
	csvPath := flag.String("csv", "", "load MNIST from a CSV file instead of IDX")
	maxSamples := flag.Int("samples", 0, "max samples to use (0 = all)")
	epochs := flag.Int("epochs", 5, "training epochs")
	batchSize := flag.Int("batch", 32, "batch size")
	lr := flag.Float64("lr", 0.001, "Adam learning rate")
	useSynthetic := flag.Bool("synthetic", false, "use synthetic data instead of MNIST files")
	modelName := flag.String("model", "lenet", "CNN variant: basic or lenet")
	seed := flag.Int64("seed", 42, "shuffle seed")
	savePath := flag.String("save", "", "save trained weights to this file")
	loadPath := flag.String("load", "", "load weights from this file before training")
	onnxPath := flag.String("pretrained", "", "classify -image with this ONNX model and exit")
	imagePath := flag.String("image", "", "image for -pretrained classification")
	flag.Parse()

	if *onnxPath != "" {
		// Missing model files or a missing ONNX runtime shouldn't crash;
		// report and carry on so the rest of the lecture still runs.
		if err := runPretrained(*onnxPath, *imagePath); err != nil {
			fmt.Printf("Pretrained demo skipped: %v\n", err)
		}
		return
	}

	fmt.Println("Primer - Convolutional Networks on MNIST")

	// Autodiff decorator over the CPU backend.
	backend := autodiff.New(cpu.New())

	data, err := loadData(*dataDir, *csvPath, *useSynthetic)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("\nMNIST data files not found.")
			fmt.Println("\nTo download the dataset:")
			fmt.Println("  1. mkdir data")
			fmt.Println("  2. Fetch train-images-idx3-ubyte and train-labels-idx1-ubyte")
			fmt.Println("     (plus the t10k pair) and gunzip them into data/")
			fmt.Println("\nOr run with -synthetic to use embedded patterns:")
			fmt.Println("  go run ./cmd/lecture -synthetic")
			os.Exit(1)
		}
		log.Fatalf("Failed to load data: %v", err)
	}

	data = data.Subsample(*maxSamples)
	trainData, valData := data.Split(0.2)
	fmt.Printf("\nDataset: %d samples (train %d, val %d)\n", data.Len(), trainData.Len(), valData.Len())

	// Labels stay as class indices for the loss; here is what the one-hot
	// encoding of the first label looks like.
	if data.Len() > 0 {
		fmt.Printf("Label %d one-hot: %v\n", data.Labels[0], mnist.OneHot(data.Labels[:1], 10))
	}

	available := variants(backend)
	v, ok := available[*modelName]
	if !ok {
		names := make([]string, 0, len(available))
		for name := range available {
			names = append(names, name)
		}
		sort.Strings(names)
		log.Fatalf("Unknown model %q, available: %v", *modelName, names)
	}

	model := v.Build()
	fmt.Printf("\nModel %q (%d trainable parameters):\n", v.Name, countParameters(model))
	for _, line := range v.Description {
		fmt.Printf("  %s\n", line)
	}

	if *loadPath != "" {
		state, err := checkpoint.Load(*loadPath)
		if err != nil {
			log.Fatalf("Failed to load checkpoint: %v", err)
		}
		if err := model.LoadStateDict(state); err != nil {
			log.Fatalf("Failed to restore weights: %v", err)
		}
		fmt.Printf("\nRestored weights from %s\n", *loadPath)
	}

	optimizer := optim.NewAdam(model.Parameters(), optim.DefaultAdamConfig(*lr))
	fmt.Printf("\nTraining: Adam lr=%.4g, batch=%d, epochs=%d\n", *lr, *batchSize, *epochs)

	backend.Tape().StartRecording()

	rng := rand.New(rand.NewSource(*seed))
	valBatches := mnist.Batches(valData, 256, nil, backend)

	for epoch := 0; epoch < *epochs; epoch++ {
		// Reshuffle each epoch.
		trainBatches := mnist.Batches(trainData, *batchSize, rng, backend)

		avgLoss, trainAcc := trainEpoch(model, trainBatches, optimizer, backend)
		valLoss, valAcc := validate(model, valBatches, backend)

		fmt.Printf("Epoch %2d/%d: loss=%.4f train_acc=%.2f%% val_loss=%.4f val_acc=%.2f%%\n",
			epoch+1, *epochs, avgLoss, trainAcc*100, valLoss, valAcc*100)
	}

	finalLoss, finalAcc := validate(model, valBatches, backend)
	fmt.Printf("\nFinal validation: loss=%.4f accuracy=%.2f%%\n", finalLoss, finalAcc*100)

	// With real IDX data the held-out t10k pair gives a proper test score;
	// synthetic and CSV runs only have the validation split.
	if !*useSynthetic && *csvPath == "" {
		if testData, err := mnist.Load(*dataDir, false); err != nil {
			fmt.Printf("Test set not evaluated (%v)\n", err)
		} else {
			testBatches := mnist.Batches(testData, 256, nil, backend)
			testLoss, testAcc := validate(model, testBatches, backend)
			fmt.Printf("Test set (%d samples): loss=%.4f accuracy=%.2f%%\n",
				testData.Len(), testLoss, testAcc*100)
		}
	}

	if *savePath != "" {
		if err := checkpoint.Save(*savePath, model.StateDict()); err != nil {
			log.Fatalf("Failed to save checkpoint: %v", err)
		}
		fmt.Printf("Saved weights to %s\n", *savePath)
	}
}

func loadData(dataDir, csvPath string, synthetic bool) (*mnist.Dataset, error) {
	switch {
	case synthetic:
		fmt.Println("\nUsing synthetic data (embedded patterns)")
		return mnist.Synthetic(2000), nil
	case csvPath != "":
		fmt.Printf("\nLoading MNIST CSV from %s\n", csvPath)
		return mnist.LoadCSV(csvPath)
	default:
		fmt.Printf("\nLoading MNIST from %s\n", dataDir)
		return mnist.Load(dataDir, true)
	}
}

// trainEpoch runs one pass over the training batches, updating parameters
// after every batch.
func trainEpoch(
	model *nn.Sequential[backendT],
	batches []mnist.Batch[backendT],
	optimizer optim.Optimizer,
	backend backendT,
) (avgLoss, accuracy float32) {
	var totalLoss float32
	totalCorrect, totalSamples := 0, 0

	for _, batch := range batches {
		logits := model.Forward(batch.Images)

		lossRaw := backend.CrossEntropy(logits.Raw(), batch.Labels.Raw())
		totalLoss += lossRaw.AsFloat32()[0]

		// Seed the backward pass with d(loss)/d(loss) = 1.
		seed, err := tensor.NewRaw(lossRaw.Shape(), lossRaw.DType(), backend.Device())
		if err != nil {
			panic(err)
		}
		seed.AsFloat32()[0] = 1.0

		grads := backend.Tape().Backward(seed, backend)
		if err := optimizer.Step(grads); err != nil {
			panic(err)
		}
		backend.Tape().Clear()

		acc := nn.Accuracy(logits, batch.Labels)
		totalCorrect += int(acc*float32(batch.Size) + 0.5)
		totalSamples += batch.Size
	}

	return totalLoss / float32(len(batches)), float32(totalCorrect) / float32(totalSamples)
}

// validate evaluates the model without recording gradients.
func validate(
	model *nn.Sequential[backendT],
	batches []mnist.Batch[backendT],
	backend backendT,
) (avgLoss, accuracy float32) {
	wasRecording := backend.Tape().IsRecording()
	backend.Tape().StopRecording()
	defer func() {
		if wasRecording {
			backend.Tape().StartRecording()
		}
	}()

	var totalLoss float32
	totalCorrect, totalSamples := 0, 0

	for _, batch := range batches {
		logits := model.Forward(batch.Images)
		totalLoss += backend.CrossEntropy(logits.Raw(), batch.Labels.Raw()).AsFloat32()[0]

		acc := nn.Accuracy(logits, batch.Labels)
		totalCorrect += int(acc*float32(batch.Size) + 0.5)
		totalSamples += batch.Size
	}

	return totalLoss / float32(len(batches)), float32(totalCorrect) / float32(totalSamples)
}

// runPretrained classifies a single image with an imported ONNX model. The
// metadata sidecar is expected next to the model as <model>.json.
func runPretrained(modelPath, imagePath string) error {
	if imagePath == "" {
		return fmt.Errorf("-pretrained requires -image")
	}

	metaPath := strings.TrimSuffix(modelPath, ".onnx") + ".json"
	clf, err := pretrained.Open(modelPath, metaPath)
	if err != nil {
		return err
	}
	defer clf.Close()

	f, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	input, err := pretrained.Preprocess(f, clf.Metadata)
	if err != nil {
		return err
	}

	result, err := clf.Predict(input)
	if err != nil {
		return err
	}

	fmt.Printf("Prediction: %s (confidence %.4f)\n", result.Class, result.Confidence)
	classes := make([]string, 0, len(result.Scores))
	for class := range result.Scores {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		fmt.Printf("  %-12s %.4f\n", class, result.Scores[class])
	}
	return nil
}
