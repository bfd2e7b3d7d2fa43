package checkpoints

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ONNX interchange for weight checkpoints. Only the initializer tensors of
// the graph are read or written; node topology is ignored because the
// decoder architecture is fixed by the model metadata, not by the file.
//
// The message schema is the subset of onnx.proto needed for initializers,
// built as a dynamic descriptor so no generated bindings are required.
// Field numbers follow the upstream ONNX definition.

// ONNX TensorProto.DataType values for the element types we accept.
const (
	onnxDataTypeFloat  = 1
	onnxDataTypeDouble = 11
)

const onnxIRVersion = 7

type onnxSchema struct {
	model  protoreflect.MessageDescriptor
	graph  protoreflect.MessageDescriptor
	tensor protoreflect.MessageDescriptor
}

func fieldDesc(name string, number int32, fieldType descriptorpb.FieldDescriptorProto_Type,
	label descriptorpb.FieldDescriptorProto_Label, typeName string) *descriptorpb.FieldDescriptorProto {
	field := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Type:   fieldType.Enum(),
		Label:  label.Enum(),
	}
	if typeName != "" {
		field.TypeName = proto.String(typeName)
	}
	return field
}

func newONNXSchema() (*onnxSchema, error) {
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED

	descriptor := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("onnx_initializers.proto"),
		Package: proto.String("onnx"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("TensorProto"),
				Field: []*descriptorpb.FieldDescriptorProto{
					fieldDesc("dims", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64, repeated, ""),
					fieldDesc("data_type", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32, optional, ""),
					fieldDesc("float_data", 4, descriptorpb.FieldDescriptorProto_TYPE_FLOAT, repeated, ""),
					fieldDesc("name", 8, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
					fieldDesc("raw_data", 9, descriptorpb.FieldDescriptorProto_TYPE_BYTES, optional, ""),
					fieldDesc("double_data", 10, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, repeated, ""),
				},
			},
			{
				Name: proto.String("GraphProto"),
				Field: []*descriptorpb.FieldDescriptorProto{
					fieldDesc("name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
					fieldDesc("initializer", 5, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, repeated, ".onnx.TensorProto"),
				},
			},
			{
				Name: proto.String("ModelProto"),
				Field: []*descriptorpb.FieldDescriptorProto{
					fieldDesc("ir_version", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64, optional, ""),
					fieldDesc("producer_name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
					fieldDesc("producer_version", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
					fieldDesc("model_version", 5, descriptorpb.FieldDescriptorProto_TYPE_INT64, optional, ""),
					fieldDesc("graph", 7, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, optional, ".onnx.GraphProto"),
				},
			},
		},
	}

	file, err := protodesc.NewFile(descriptor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ONNX descriptor: %v", err)
	}

	return &onnxSchema{
		model:  file.Messages().ByName("ModelProto"),
		graph:  file.Messages().ByName("GraphProto"),
		tensor: file.Messages().ByName("TensorProto"),
	}, nil
}

// ONNXImporter reads initializer tensors from an ONNX model file
type ONNXImporter struct{}

// NewONNXImporter creates a new ONNX importer
func NewONNXImporter() *ONNXImporter {
	return &ONNXImporter{}
}

// ImportFromONNX loads the initializer tensors of an ONNX file as a checkpoint
func (oi *ONNXImporter) ImportFromONNX(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ONNX file: %v", err)
	}

	schema, err := newONNXSchema()
	if err != nil {
		return nil, err
	}

	model := dynamicpb.NewMessage(schema.model)
	if err := proto.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ONNX model: %v", err)
	}

	graphField := schema.model.Fields().ByName("graph")
	if !model.Has(graphField) {
		return nil, fmt.Errorf("ONNX model %s has no graph", path)
	}
	graph := model.Get(graphField).Message()

	initializers := graph.Get(schema.graph.Fields().ByName("initializer")).List()
	if initializers.Len() == 0 {
		return nil, fmt.Errorf("ONNX model %s has no initializer tensors", path)
	}

	checkpoint := &Checkpoint{
		Metadata: CheckpointMetadata{
			Version:   "1.0.0",
			Framework: "onnx",
		},
	}

	for i := 0; i < initializers.Len(); i++ {
		weight, err := oi.importTensor(schema, initializers.Get(i).Message())
		if err != nil {
			return nil, fmt.Errorf("initializer %d: %v", i, err)
		}
		checkpoint.Weights = append(checkpoint.Weights, weight)
	}

	return checkpoint, nil
}

func (oi *ONNXImporter) importTensor(schema *onnxSchema, tensor protoreflect.Message) (WeightTensor, error) {
	fields := schema.tensor.Fields()

	name := tensor.Get(fields.ByName("name")).String()
	dataType := int32(tensor.Get(fields.ByName("data_type")).Int())

	dims := tensor.Get(fields.ByName("dims")).List()
	shape := make([]int, dims.Len())
	for i := 0; i < dims.Len(); i++ {
		shape[i] = int(dims.Get(i).Int())
	}

	var values []float64
	raw := tensor.Get(fields.ByName("raw_data")).Bytes()

	switch dataType {
	case onnxDataTypeFloat:
		if len(raw) > 0 {
			if len(raw)%4 != 0 {
				return WeightTensor{}, fmt.Errorf("tensor %s: raw_data length %d is not a multiple of 4", name, len(raw))
			}
			values = make([]float64, len(raw)/4)
			for i := range values {
				bits := binary.LittleEndian.Uint32(raw[i*4:])
				values[i] = float64(math.Float32frombits(bits))
			}
		} else {
			floatData := tensor.Get(fields.ByName("float_data")).List()
			values = make([]float64, floatData.Len())
			for i := range values {
				values[i] = floatData.Get(i).Float()
			}
		}
	case onnxDataTypeDouble:
		if len(raw) > 0 {
			if len(raw)%8 != 0 {
				return WeightTensor{}, fmt.Errorf("tensor %s: raw_data length %d is not a multiple of 8", name, len(raw))
			}
			values = make([]float64, len(raw)/8)
			for i := range values {
				bits := binary.LittleEndian.Uint64(raw[i*8:])
				values[i] = math.Float64frombits(bits)
			}
		} else {
			doubleData := tensor.Get(fields.ByName("double_data")).List()
			values = make([]float64, doubleData.Len())
			for i := range values {
				values[i] = doubleData.Get(i).Float()
			}
		}
	default:
		return WeightTensor{}, fmt.Errorf("tensor %s: unsupported ONNX data type %d", name, dataType)
	}

	return WeightTensor{
		Name:  name,
		Shape: shape,
		Data:  values,
	}, nil
}

// ONNXExporter writes checkpoint weights as ONNX initializer tensors
type ONNXExporter struct{}

// NewONNXExporter creates a new ONNX exporter
func NewONNXExporter() *ONNXExporter {
	return &ONNXExporter{}
}

// ExportToONNX converts a checkpoint to ONNX format
func (oe *ONNXExporter) ExportToONNX(checkpoint *Checkpoint, path string) error {
	schema, err := newONNXSchema()
	if err != nil {
		return err
	}

	graph := dynamicpb.NewMessage(schema.graph)
	graphFields := schema.graph.Fields()
	graph.Set(graphFields.ByName("name"), protoreflect.ValueOfString("knsurrogate-decoder"))

	initializers := graph.Mutable(graphFields.ByName("initializer")).List()
	tensorFields := schema.tensor.Fields()
	for _, weight := range checkpoint.Weights {
		tensor := dynamicpb.NewMessage(schema.tensor)
		tensor.Set(tensorFields.ByName("name"), protoreflect.ValueOfString(weight.Name))
		tensor.Set(tensorFields.ByName("data_type"), protoreflect.ValueOfInt32(onnxDataTypeDouble))

		dims := tensor.Mutable(tensorFields.ByName("dims")).List()
		for _, dim := range weight.Shape {
			dims.Append(protoreflect.ValueOfInt64(int64(dim)))
		}

		doubleData := tensor.Mutable(tensorFields.ByName("double_data")).List()
		for _, value := range weight.Data {
			doubleData.Append(protoreflect.ValueOfFloat64(value))
		}

		initializers.Append(protoreflect.ValueOfMessage(tensor))
	}

	model := dynamicpb.NewMessage(schema.model)
	modelFields := schema.model.Fields()
	model.Set(modelFields.ByName("ir_version"), protoreflect.ValueOfInt64(onnxIRVersion))
	model.Set(modelFields.ByName("producer_name"), protoreflect.ValueOfString("knsurrogate"))
	model.Set(modelFields.ByName("producer_version"), protoreflect.ValueOfString("1.0.0"))
	model.Set(modelFields.ByName("model_version"), protoreflect.ValueOfInt64(1))
	model.Set(modelFields.ByName("graph"), protoreflect.ValueOfMessage(graph))

	data, err := proto.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal ONNX model: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write ONNX file: %v", err)
	}

	return nil
}
